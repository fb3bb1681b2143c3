package emulator

// Observer is notified by the emulator after it changes machine state.
// Callbacks run on the emulator's goroutine and must not block.
type Observer interface {
	OnConsoleMessage(text string)
	OnMemoryChanged()
	OnRegistersChanged()
	OnProgramCounterChanged(pc int)
	OnInstructionRegisterChanged(word uint32)
	OnStepModeEntered()
	OnStepModeExited()
}

// NopObserver ignores all notifications.
type NopObserver struct{}

var _ Observer = NopObserver{}

func (NopObserver) OnConsoleMessage(text string)             {}
func (NopObserver) OnMemoryChanged()                         {}
func (NopObserver) OnRegistersChanged()                      {}
func (NopObserver) OnProgramCounterChanged(pc int)           {}
func (NopObserver) OnInstructionRegisterChanged(word uint32) {}
func (NopObserver) OnStepModeEntered()                       {}
func (NopObserver) OnStepModeExited()                        {}
