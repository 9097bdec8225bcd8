package colbind

// SerializedExpr is the persisted form of at most one Binder. A nil SQL is
// the absent marker; an empty string is never used for absence.
type SerializedExpr struct {
	SQL *string `json:"expr"`
}

// NewSerializedExpr captures b's canonical text, or the absent marker for a
// nil binder.
func NewSerializedExpr(b *Binder) SerializedExpr {
	if b == nil {
		return SerializedExpr{}
	}
	text := b.Serialize()
	return SerializedExpr{SQL: &text}
}

// IsAbsent reports whether no expression is stored.
func (s SerializedExpr) IsAbsent() bool {
	return s.SQL == nil
}

// Deserialize rebinds the stored text. The absent marker yields (nil, nil).
func (s SerializedExpr) Deserialize() (*Binder, error) {
	if s.SQL == nil {
		return nil, nil
	}
	return Deserialize(*s.SQL)
}
