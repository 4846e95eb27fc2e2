package analysis

import (
	"time"

	"ray_analysis/internal/domain/board"
	"ray_analysis/internal/domain/move"
	"ray_analysis/internal/domain/tree"
)

const (
	RequestQuit               = "quit"
	RequestAnalysePosition    = "analyse-position"
	RequestAnalyseGame        = "analyse-game"
	RequestUpdateTimeSettings = "update-time-settings"

	ResponseError   = "error"
	ResponseWarning = "warning"
)

type BudgetMode int

const (
	ConstPlayoutMode BudgetMode = iota
	ConstTimeMode
)

func (m BudgetMode) String() string {
	if m == ConstTimeMode {
		return "const-time"
	}
	return "const-playout"
}

// Budget limits a search by playout count or by time per move.
type Budget struct {
	Mode     BudgetMode
	Playouts int
	Seconds  float64
}

type SearchParams struct {
	ToMove        board.Color
	Komi          float64
	Handicap      int
	ConstHandicap int
	Budget        Budget
}

// SearchResult is what the engine hands back: the chosen position in engine
// coordinates and the arena index of the root node.
type SearchResult struct {
	Move int
	Root int
	Tree *tree.Arena
}

type Response struct {
	Response   string     `json:"response"`
	Message    string     `json:"message,omitempty"`
	MoveNumber int        `json:"moveNumber,omitempty"`
	RayMove    *move.Move `json:"rayMove,omitempty"`
	Tree       *Report    `json:"tree,omitempty"`
}

type Report struct {
	FinalScore float64 `json:"finalScore"`
	*ReportNode
}

type ReportNode struct {
	Win          float64        `json:"win"`
	Playouts     int            `json:"playouts"`
	Owner        []float64      `json:"owner"`
	Score        float64        `json:"score"`
	Policy       []float64      `json:"policy,omitempty"`
	WinValue     *float64       `json:"winValue,omitempty"`
	WinPlusValue *float64       `json:"winPlusValue,omitempty"`
	Children     []*ReportChild `json:"children,omitempty"`
}

type ReportChild struct {
	Pos       move.Move `json:"pos"`
	PureValue float64   `json:"pureValue"`
	*ReportNode
}

// Record is one document of the analysis archive.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	Request   string    `json:"request" bson:"request"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	BoardSize int       `json:"board_size" bson:"board_size"`
	Komi      float64   `json:"komi" bson:"komi"`
	Handicap  int       `json:"handicap" bson:"handicap"`
	Moves     []string  `json:"moves" bson:"moves"`
	SGF       string    `json:"sgf" bson:"sgf"`
	Responses int       `json:"responses" bson:"responses"`
}
