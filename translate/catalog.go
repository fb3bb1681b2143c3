package translate

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Brazilian Portuguese messages; en-US is the key itself.
var pt_BR = map[string]string{
	// Console
	"translation succeeded":  "Sucesso na tradução!",
	"end of execution":       "Fim da execução.",
	"end of step execution":  "Fim da execução em etapas.",
	"step execution started": "O sistema iniciou o processo de Execução em Etapas.",
	"execution stopped":      "Execução interrompida.",
	"source code is blank":   "O código fonte está em branco.",

	// Runtime
	"the system is not in step execution mode":         "O sistema não está em modo de Execução em Etapas.",
	"memory address does not hold a valid instruction": "O endereço de memória acessado não contém uma instrução válida.",
	"hint: always end your code with halt":             "Dica: sempre termine seu código com halt",
	"address %d: %v":                                   "endereço %d: %v",
	"address %d, line %d: %v":                          "endereço %d, linha %d: %v",

	"%v is not a valid instruction (memory address: %v)": "Erro de execução: \"%v\" não é uma instrução válida. (endereço de memória: %v)",

	// Machine
	"register 0 is read-only":                 "O registrador 0 é somente leitura",
	"register invalid":                        "Registrador inválido",
	"register must be a non-negative integer": "O registrador deve ser um inteiro não negativo",
	"memory address invalid":                  "Endereço de memória inválido",
	"memory address %v is write protected":    "O endereço de memória %v está protegido contra escrita",
	"data is not executable":                  "Dados não são executáveis",
	"invalid program counter %v":              "Contador de programa inválido %v",

	// Assembler
	"translation error on line %d '%v': %v": "Erro de tradução na linha %d '%v': %v",
	"value must be an integer or a label":   "O valor deve ser um inteiro ou um label",
	"label must start with a letter":        "O label só pode começar com letras",
	"label without instruction":             "Label sem instrução",
	"label %v missing":                      "Label %v não encontrado",
	"instruction unknown":                   "Instrução desconhecida",
	"operand missing":                       "Operando ausente",
	"overflow: %v does not fit in %v bits":  "Overflow: %v não cabe em %v bits",
}

// loadCatalog registers the translations with the default catalog.
func loadCatalog() {
	for key, msg := range pt_BR {
		_ = message.SetString(language.BrazilianPortuguese, key, msg)
	}
}
