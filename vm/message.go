package vm

type MessageType int

const (
	_ MessageType = iota
	MsgDebug
	MsgClear
	MsgDraw
	MsgHalt
	MsgReset
)

func (mt MessageType) String() string {
	switch mt {
	case MsgDebug:
		return "Debug"
	case MsgClear:
		return "Clear"
	case MsgDraw:
		return "Draw"
	case MsgHalt:
		return "Halt"
	case MsgReset:
		return "Reset"
	default:
		return "Unknown"
	}
}

type Message struct {
	Type    MessageType
	PC      uint16 // Address of the instruction that triggered the message.
	Cycle   int
	Message string
}

func NewMessage(mt MessageType, pc uint16, cycle int, msg string) Message {
	return Message{
		Type:    mt,
		PC:      pc,
		Cycle:   cycle,
		Message: msg,
	}
}
