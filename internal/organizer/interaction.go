package organizer

// Confirmer asks the user a synchronous yes/no question.
type Confirmer interface {
	Confirm(title, message string) bool
}

// Progress receives per-item callbacks during batch operations.
type Progress interface {
	// Step is called before item index (zero-based) of total is processed.
	Step(label string, index, total int)
	// Done is called once the batch has finished.
	Done()
}

// NopProgress discards progress callbacks.
type NopProgress struct{}

func (NopProgress) Step(string, int, int) {}
func (NopProgress) Done()                 {}
