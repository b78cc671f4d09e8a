package api

type Window struct {
	Id int
	// GlobalPath is the path as shown in the window tag. For remote files it includes the host.
	GlobalPath string
	// Path is the local path of the file.
	Path string
}

type WindowBody struct {
	Len int
}

type Notification struct {
	WinId  int
	Op     NotificationOp
	Offset int
	Len    int
	// Cmd is the command and its arguments for Exec notifications.
	Cmd []string
}

// Selection is a selected range of the window body, in rune offsets.
type Selection struct {
	Start, End, Len int
}

type NotificationOp int

const (
	NotificationOpInsert NotificationOp = iota
	NotificationOpDelete
	NotificationOpExec
	NotificationOpPut
	NotificationOpFileClosed
	NotificationOpFileOpened
)

func (o NotificationOp) String() string {
	switch o {
	case NotificationOpInsert:
		return "Insert"
	case NotificationOpDelete:
		return "Delete"
	case NotificationOpExec:
		return "Exec"
	case NotificationOpPut:
		return "Put"
	case NotificationOpFileClosed:
		return "FileClosed"
	case NotificationOpFileOpened:
		return "FileOpened"
	default:
		return "?"
	}
}
