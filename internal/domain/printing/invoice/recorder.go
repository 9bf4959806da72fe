package invoice

// OpKind discriminates recorded draw operations.
type OpKind string

const (
	OpText OpKind = "text"
	OpLine OpKind = "line"
	OpPage OpKind = "page"
)

// DrawOp is one recorded draw instruction. Line ops use X2/Y2 as the end
// point; page ops mark the start of Page.
type DrawOp struct {
	Kind  OpKind  `json:"kind"`
	Page  int     `json:"page"`
	Text  string  `json:"text,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	X2    float64 `json:"x2,omitempty"`
	Y2    float64 `json:"y2,omitempty"`
	Size  float64 `json:"size,omitempty"`
	Bold  bool    `json:"bold,omitempty"`
	Align Align   `json:"align,omitempty"`
}

// Recorder is a DocumentSink that keeps every operation in memory.
type Recorder struct {
	Ops  []DrawOp
	page int
}

// NewRecorder returns a recorder with its first page open.
func NewRecorder() *Recorder {
	return &Recorder{page: 1}
}

func (r *Recorder) Text(text string, x, y float64, font Font, align Align) {
	r.Ops = append(r.Ops, DrawOp{
		Kind: OpText, Page: r.page, Text: text,
		X: x, Y: y, Size: font.Size, Bold: font.Bold, Align: align,
	})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.Ops = append(r.Ops, DrawOp{Kind: OpLine, Page: r.page, X: x1, Y: y1, X2: x2, Y2: y2})
}

func (r *Recorder) AddPage() {
	r.page++
	r.Ops = append(r.Ops, DrawOp{Kind: OpPage, Page: r.page})
}

// PageCount returns the number of pages seen.
func (r *Recorder) PageCount() int {
	return r.page
}

// Find returns the text ops whose text equals text.
func (r *Recorder) Find(text string) []DrawOp {
	var out []DrawOp
	for _, op := range r.Ops {
		if op.Kind == OpText && op.Text == text {
			out = append(out, op)
		}
	}
	return out
}

// Kind returns the ops of one kind in draw order.
func (r *Recorder) Kind(kind OpKind) []DrawOp {
	var out []DrawOp
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}
