package model

type OutcomeType string

const OUTCOME_CONTINUE OutcomeType = "CONTINUE"
const OUTCOME_COMPLETE OutcomeType = "COMPLETE"
const OUTCOME_FAIL OutcomeType = "FAIL"

const STEP_LIST_CREATE = "list-create"
const STEP_LIST_IMPORT = "list-import"
const STEP_CAMPAIGN_CREATE = "campaign-create"
const STEP_CAMPAIGN_SEND = "campaign-send"
const STEP_CAMPAIGN_REPORT = "campaign-report"

// Outcome is the only contract between a step handler and the engine.
// Steps never call each other directly.
type Outcome struct {
	Type   OutcomeType
	Next   string
	Detail any
}

func Continue(next string) Outcome {
	return Outcome{Type: OUTCOME_CONTINUE, Next: next}
}

func Complete() Outcome {
	return Outcome{Type: OUTCOME_COMPLETE}
}

func Fail(detail any) Outcome {
	return Outcome{Type: OUTCOME_FAIL, Detail: detail}
}

// Stash carries cross-step state. The engine owns it and passes it by
// reference to each step; steps mutate fields, never replace it.
type Stash struct {
	MailingListID int64
	CampaignID    int64
}

func NewStash(defaultListID int64) *Stash {
	return &Stash{MailingListID: defaultListID}
}
