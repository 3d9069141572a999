package model

// FieldRef locates a question inside a form and carries its resolved answer
// key.
type FieldRef struct {
	Key       string
	StepIndex int
	Question  *Question
}

// Index resolves answer keys once per question at load time.
type Index struct {
	form    *Form
	byKey   map[string]FieldRef
	byID    map[string]FieldRef
	perStep [][]string
}

// NewIndex builds the key index for form. When two questions share a key the
// first one wins; formdoc.Lint reports the collision.
func NewIndex(form *Form) *Index {
	idx := &Index{
		form:    form,
		byKey:   make(map[string]FieldRef),
		byID:    make(map[string]FieldRef),
		perStep: make([][]string, len(form.Steps)),
	}
	for si := range form.Steps {
		step := &form.Steps[si]
		keys := make([]string, 0, len(step.Questions))
		for qi := range step.Questions {
			question := &step.Questions[qi]
			ref := FieldRef{Key: question.Key(), StepIndex: si, Question: question}
			if _, exists := idx.byKey[ref.Key]; !exists {
				idx.byKey[ref.Key] = ref
			}
			if _, exists := idx.byID[question.ID]; !exists {
				idx.byID[question.ID] = ref
			}
			keys = append(keys, ref.Key)
		}
		idx.perStep[si] = keys
	}
	return idx
}

// Form returns the indexed form.
func (i *Index) Form() *Form {
	return i.form
}

// Field looks up a question by its answer key.
func (i *Index) Field(key string) (FieldRef, bool) {
	ref, ok := i.byKey[key]
	return ref, ok
}

// ByID looks up a question by its id.
func (i *Index) ByID(id string) (FieldRef, bool) {
	ref, ok := i.byID[id]
	return ref, ok
}

// StepKeys returns the answer keys for the questions of step stepIndex in
// document order.
func (i *Index) StepKeys(stepIndex int) []string {
	if stepIndex < 0 || stepIndex >= len(i.perStep) {
		return nil
	}
	return i.perStep[stepIndex]
}

// Defaults returns the initial answers seeded from hidden question defaults.
func (i *Index) Defaults() Answers {
	out := make(Answers)
	for _, step := range i.form.Steps {
		for _, question := range step.Questions {
			if question.Type == QuestionHidden && question.DefaultValue != nil {
				out[question.Key()] = cloneValue(question.DefaultValue)
			}
		}
	}
	return out
}
