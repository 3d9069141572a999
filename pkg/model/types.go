package model

// QuestionType enumerates the field kinds a Question can take.
type QuestionType string

const (
	QuestionText          QuestionType = "text"
	QuestionEmail         QuestionType = "email"
	QuestionPhone         QuestionType = "phone"
	QuestionNumber        QuestionType = "number"
	QuestionCurrency      QuestionType = "currency"
	QuestionRadio         QuestionType = "radio"
	QuestionCheckbox      QuestionType = "checkbox"
	QuestionSelect        QuestionType = "select"
	QuestionMultiselect   QuestionType = "multiselect"
	QuestionDate          QuestionType = "date"
	QuestionTime          QuestionType = "time"
	QuestionDatetime      QuestionType = "datetime"
	QuestionFile          QuestionType = "file"
	QuestionRating        QuestionType = "rating"
	QuestionSlider        QuestionType = "slider"
	QuestionHidden        QuestionType = "hidden"
	QuestionEircode       QuestionType = "eircode"
	QuestionNumberplate   QuestionType = "numberplate"
	QuestionPrivacyPolicy QuestionType = "privacy_policy"
	QuestionHelperText    QuestionType = "helper_text"
)

// QuestionTypes lists every supported question type in declaration order.
var QuestionTypes = []QuestionType{
	QuestionText, QuestionEmail, QuestionPhone, QuestionNumber, QuestionCurrency,
	QuestionRadio, QuestionCheckbox, QuestionSelect, QuestionMultiselect,
	QuestionDate, QuestionTime, QuestionDatetime, QuestionFile, QuestionRating,
	QuestionSlider, QuestionHidden, QuestionEircode, QuestionNumberplate,
	QuestionPrivacyPolicy, QuestionHelperText,
}

// IsInput reports whether the question collects a user answer. Hidden fields
// and helper text are carried by the document but never validated or prompted.
func (t QuestionType) IsInput() bool {
	return t != QuestionHidden && t != QuestionHelperText
}

// IsMultiValue reports whether answers for the type are string lists.
func (t QuestionType) IsMultiValue() bool {
	return t == QuestionCheckbox || t == QuestionMultiselect
}

// IsNumeric reports whether answers for the type are numbers.
func (t QuestionType) IsNumeric() bool {
	switch t {
	case QuestionNumber, QuestionCurrency, QuestionRating, QuestionSlider:
		return true
	default:
		return false
	}
}

// Logic joins the rules of a Condition.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Operator compares an answer against a rule value.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
)

// Operators lists the operators understood by the condition evaluator.
var Operators = []Operator{
	OpEquals, OpNotEquals, OpContains, OpNotContains, OpIsEmpty,
	OpIsNotEmpty, OpGreaterThan, OpLessThan, OpStartsWith, OpEndsWith,
}

// ConditionRule compares the answer stored under QuestionID with Value.
// QuestionID holds the answer key (fieldName when set, otherwise the id).
type ConditionRule struct {
	QuestionID string   `json:"questionId" yaml:"questionId"`
	Operator   Operator `json:"operator" yaml:"operator"`
	Value      any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// Condition is a flat boolean expression over answers.
type Condition struct {
	Logic Logic           `json:"logic" yaml:"logic"`
	Rules []ConditionRule `json:"rules" yaml:"rules"`
}

// TargetType selects where a navigation rule sends the user.
type TargetType string

const (
	TargetNext     TargetType = "next"
	TargetPrevious TargetType = "previous"
	TargetSpecific TargetType = "specific"
	TargetSubmit   TargetType = "submit"
	TargetURL      TargetType = "url"
)

// NavigationTarget describes the destination of a ConditionalNavigation rule.
type NavigationTarget struct {
	Type   TargetType `json:"type" yaml:"type"`
	StepID string     `json:"stepId,omitempty" yaml:"stepId,omitempty"`
	URL    string     `json:"url,omitempty" yaml:"url,omitempty"`
}

// ConditionalNavigation routes to Target when Condition holds. Rules with a
// higher Priority are evaluated first.
type ConditionalNavigation struct {
	ID        string           `json:"id" yaml:"id"`
	Condition Condition        `json:"condition" yaml:"condition"`
	Target    NavigationTarget `json:"target" yaml:"target"`
	Priority  int              `json:"priority" yaml:"priority"`
}

// ButtonConfig toggles and labels a step navigation button.
type ButtonConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
}

// QuestionValidation lists the constraints applied to a question's answer.
type QuestionValidation struct {
	Required       bool     `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength      *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength      *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min            *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max            *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern        string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	PatternMessage string   `json:"patternMessage,omitempty" yaml:"patternMessage,omitempty"`
}

// Option is a selectable choice for radio/checkbox/select questions.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// GridPosition places a question inside the step grid. Presentation only.
type GridPosition struct {
	Row     int `json:"row,omitempty" yaml:"row,omitempty"`
	Column  int `json:"column,omitempty" yaml:"column,omitempty"`
	ColSpan int `json:"colSpan,omitempty" yaml:"colSpan,omitempty"`
	RowSpan int `json:"rowSpan,omitempty" yaml:"rowSpan,omitempty"`
}

// Question is a single field definition within a step.
type Question struct {
	ID                 string             `json:"id" yaml:"id"`
	Type               QuestionType       `json:"type" yaml:"type"`
	Label              string             `json:"label" yaml:"label"`
	FieldName          string             `json:"fieldName,omitempty" yaml:"fieldName,omitempty"`
	Placeholder        string             `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText           string             `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Content            string             `json:"content,omitempty" yaml:"content,omitempty"`
	Textarea           bool               `json:"textarea,omitempty" yaml:"textarea,omitempty"`
	UseDateInputMask   bool               `json:"useDateInputMask,omitempty" yaml:"useDateInputMask,omitempty"`
	DefaultValue       any                `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Validation         QuestionValidation `json:"validation" yaml:"validation"`
	Options            []Option           `json:"options,omitempty" yaml:"options,omitempty"`
	ConditionalDisplay *Condition         `json:"conditionalDisplay,omitempty" yaml:"conditionalDisplay,omitempty"`
	Grid               GridPosition       `json:"gridPosition,omitempty" yaml:"gridPosition,omitempty"`
}

// Key returns the answer-map key for the question: FieldName when set,
// otherwise ID.
func (q Question) Key() string {
	if q.FieldName != "" {
		return q.FieldName
	}
	return q.ID
}

// GridLayout carries the step grid parameters. Presentation only.
type GridLayout struct {
	Columns int    `json:"columns,omitempty" yaml:"columns,omitempty"`
	Gap     string `json:"gap,omitempty" yaml:"gap,omitempty"`
}

// Step is one screen of the multi-step form.
type Step struct {
	ID                    string                  `json:"id" yaml:"id"`
	Title                 string                  `json:"title" yaml:"title"`
	Description           string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Questions             []Question              `json:"questions" yaml:"questions"`
	Layout                GridLayout              `json:"layout,omitempty" yaml:"layout,omitempty"`
	BackButton            ButtonConfig            `json:"backButton" yaml:"backButton"`
	ContinueButton        ButtonConfig            `json:"continueButton" yaml:"continueButton"`
	ConditionalNavigation []ConditionalNavigation `json:"conditionalNavigation,omitempty" yaml:"conditionalNavigation,omitempty"`
	DefaultNextStep       string                  `json:"defaultNextStep,omitempty" yaml:"defaultNextStep,omitempty"`
	DefaultPrevStep       string                  `json:"defaultPrevStep,omitempty" yaml:"defaultPrevStep,omitempty"`
	ValidateOnContinue    bool                    `json:"validateOnContinue" yaml:"validateOnContinue"`
	AutoAdvance           bool                    `json:"autoAdvance,omitempty" yaml:"autoAdvance,omitempty"`
	EnterKeyAdvance       bool                    `json:"enterKeyAdvance,omitempty" yaml:"enterKeyAdvance,omitempty"`
}

// ProgressMode selects the progress calculation strategy.
type ProgressMode string

const (
	ProgressLinear        ProgressMode = "linear"
	ProgressStepBased     ProgressMode = "step_based"
	ProgressWeighted      ProgressMode = "weighted"
	ProgressExponential   ProgressMode = "exponential"
	ProgressQuestionBased ProgressMode = "question_based"
)

// ProgressConfig configures the progress indicator.
type ProgressConfig struct {
	Enabled         bool               `json:"enabled" yaml:"enabled"`
	Mode            ProgressMode       `json:"mode,omitempty" yaml:"mode,omitempty"`
	StepWeights     map[string]float64 `json:"stepWeights,omitempty" yaml:"stepWeights,omitempty"`
	ExponentialBase float64            `json:"exponentialBase,omitempty" yaml:"exponentialBase,omitempty"`
	ShowPercentage  bool               `json:"showPercentage,omitempty" yaml:"showPercentage,omitempty"`
}

// SubmissionType selects the submission collaborator.
type SubmissionType string

const (
	SubmissionNone    SubmissionType = "none"
	SubmissionWebhook SubmissionType = "webhook"
	SubmissionStore   SubmissionType = "store"
)

// SubmissionConfig describes what happens when the form is submitted.
type SubmissionConfig struct {
	Type           SubmissionType    `json:"type,omitempty" yaml:"type,omitempty"`
	Endpoint       string            `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Method         string            `json:"method,omitempty" yaml:"method,omitempty"`
	Headers        map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	SuccessMessage string            `json:"successMessage,omitempty" yaml:"successMessage,omitempty"`
	RedirectURL    string            `json:"redirectUrl,omitempty" yaml:"redirectUrl,omitempty"`
}

// Form is the document produced by the editor and interpreted read-only by
// the runtime. Theme is opaque to every package in this module.
type Form struct {
	ID         string           `json:"id" yaml:"id"`
	Title      string           `json:"title" yaml:"title"`
	Steps      []Step           `json:"steps" yaml:"steps"`
	Theme      map[string]any   `json:"theme,omitempty" yaml:"theme,omitempty"`
	Progress   ProgressConfig   `json:"progress" yaml:"progress"`
	Submission SubmissionConfig `json:"submission" yaml:"submission"`
}

// StepIndex returns the position of the step with the given id, or -1.
func (f Form) StepIndex(id string) int {
	return StepIndex(f.Steps, id)
}

// StepIndex returns the position of the step with the given id, or -1.
func StepIndex(steps []Step, id string) int {
	if id == "" {
		return -1
	}
	for i := range steps {
		if steps[i].ID == id {
			return i
		}
	}
	return -1
}

// QuestionCount returns the number of questions across all steps.
func (f Form) QuestionCount() int {
	total := 0
	for _, step := range f.Steps {
		total += len(step.Questions)
	}
	return total
}
