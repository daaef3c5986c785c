package wizard

import dErrors "bizdir/pkg/domain-errors"

// Flow names one enrolment variant: an ordered step sequence sharing the
// account and verification steps but diverging after business-type selection.
type Flow string

const (
	FlowCompaniesHouse Flow = "companies-house"
	FlowSoleTrader     Flow = "sole-trader"
	FlowIndividual     Flow = "individual"
	FlowCollaborator   Flow = "collaborator"
	FlowPreVerified    Flow = "pre-verified"
	FlowResend         Flow = "resend-verification"
)

// flowSteps is the ordered step sequence per flow. Conditions decide which of
// these are actually shown to a given caller.
var flowSteps = map[Flow][]Step{
	FlowCompaniesHouse: {
		StepBusinessType,
		StepUserAccount,
		StepVerification,
		StepCompanySearch,
		StepAddressLookup,
		StepBusinessDetails,
		StepPersonalDetails,
	},
	FlowSoleTrader: {
		StepBusinessType,
		StepUserAccount,
		StepVerification,
		StepBusinessDetails,
		StepPersonalDetails,
	},
	FlowIndividual: {
		StepBusinessType,
		StepUserAccount,
		StepVerification,
		StepPersonalDetails,
	},
	FlowCollaborator: {
		StepUserAccount,
		StepVerification,
		StepPersonalDetails,
	},
	FlowPreVerified: {
		StepUserAccount,
		StepVerification,
		StepBusinessDetails,
		StepPersonalDetails,
	},
	FlowResend: {
		StepResend,
		StepVerification,
	},
}

// ParseFlow validates a flow name from a URL.
func ParseFlow(s string) (Flow, error) {
	f := Flow(s)
	if _, ok := flowSteps[f]; !ok {
		return "", dErrors.New(dErrors.CodeNotFound, "unknown enrolment flow")
	}
	return f, nil
}

// stepsOf returns the flow's full ordered step list.
func stepsOf(flow Flow) []Step {
	return flowSteps[flow]
}

// stepIndex locates a step within a flow, -1 when absent.
func stepIndex(flow Flow, step Step) int {
	for i, s := range flowSteps[flow] {
		if s == step {
			return i
		}
	}
	return -1
}

// firstApplicable returns the first step whose condition holds.
func firstApplicable(flow Flow, env Env) Step {
	for _, s := range flowSteps[flow] {
		if applies(s, env) {
			return s
		}
	}
	return ""
}

// nextApplicable scans forward from the given index (exclusive) for the next
// applicable step; empty when the flow is exhausted.
func nextApplicable(flow Flow, from int, env Env) Step {
	steps := flowSteps[flow]
	for i := from + 1; i < len(steps); i++ {
		if applies(steps[i], env) {
			return steps[i]
		}
	}
	return ""
}

// previousApplicable scans backwards from the given index (exclusive) for the
// nearest preceding applicable step; empty when none precedes.
func previousApplicable(flow Flow, from int, env Env) Step {
	steps := flowSteps[flow]
	for i := from - 1; i >= 0; i-- {
		if applies(steps[i], env) {
			return steps[i]
		}
	}
	return ""
}
