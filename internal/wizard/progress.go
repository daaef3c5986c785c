package wizard

// Progress describes where in the flow the current step sits: the 1-based
// position, the total shown steps and the labels of every step the caller
// will actually see. Both derive from the same conditions the engine routes
// with, so the indicator cannot disagree with navigation.
type Progress struct {
	Number int
	Total  int
	Labels []string
}

// stepLabels are the display names used in the progress indicator.
var stepLabels = map[Step]string{
	StepBusinessType:    "Business type",
	StepUserAccount:     "Your account",
	StepVerification:    "Confirm email",
	StepResend:          "Resend code",
	StepCompanySearch:   "Find your company",
	StepAddressLookup:   "Business address",
	StepBusinessDetails: "Business details",
	StepPersonalDetails: "About you",
}

// ProgressFor computes the indicator for one step render. Steps whose
// condition currently fails are excluded from the label list and from the
// count, so toggling a feature flag renumbers the remaining steps.
func ProgressFor(flow Flow, step Step, env Env) Progress {
	p := Progress{}
	for _, s := range stepsOf(flow) {
		if !applies(s, env) {
			continue
		}
		p.Labels = append(p.Labels, stepLabels[s])
		if s == step {
			p.Number = len(p.Labels)
		}
	}
	p.Total = len(p.Labels)
	return p
}
