package domain

type Step string

const (
	StepForm    Step = "form"
	StepPreview Step = "preview"
	StepSent    Step = "sent"
	StepClosed  Step = "closed"
)

// Flow is the checkout state of one buyer session.
type Flow struct {
	Step   Step
	Form   FormData
	Errors ValidationErrors
}

// NewFlow starts at the form step with the prefilled values.
func NewFlow(prefill FormData) Flow {
	return Flow{Step: StepForm, Form: prefill}
}
