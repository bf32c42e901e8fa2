package editor

const (
	SimHz        = 30.0 // server tick rate
	Dt           = 1.0 / SimHz
	UpdateRateHz = 10.0 // per-client WS state pushes
	SnapDistance = 2.5  // world units within which an end snaps onto a node
	HistoryLimit = 256  // edits remembered per room
)
