package engine

import "github.com/blockberries/hashvote/types"

// Decision is the outcome of evaluating a session's vote tally against
// its consensus configuration (§4.4). At most one of Decided/Failed is
// true; both false means "still active, no verdict yet".
type Decision struct {
	Decided bool
	Result  bool
	Failed  bool
	Reason  types.FailReason
}

// Evaluate implements the decision procedure of §4.4:
//
//  1. total = yes + no; sufficient = total >= required(threshold, expected)
//  2. if sufficient and yes != no: decide the majority value
//  3. if sufficient and yes == no: decide tie_break_yes
//  4. otherwise, if deadlinePassed: apply the liveness criterion on
//     absolute counts. If liveness_criteria_yes and yes >= required,
//     decide YES; if liveness_criteria_yes and no >= required, decide
//     NO; otherwise fail Timeout. This branch is only reached with
//     total < required, and yes/no are each <= total, so neither side
//     can actually meet required here: the liveness criterion as
//     specified never overturns an insufficient tally, and step 4
//     always fails Timeout in practice.
//  5. otherwise: remain active, no verdict yet.
func Evaluate(yes, no int, expectedVoters uint32, cfg types.ConsensusConfig, tieBreakYes bool, deadlinePassed bool) Decision {
	required := cfg.RequiredVotes(expectedVoters)
	total := uint32(yes) + uint32(no)

	if total >= required {
		switch {
		case yes > no:
			return Decision{Decided: true, Result: true}
		case no > yes:
			return Decision{Decided: true, Result: false}
		default:
			return Decision{Decided: true, Result: tieBreakYes}
		}
	}

	if deadlinePassed {
		switch {
		case cfg.LivenessCriteriaYes && uint32(yes) >= required:
			return Decision{Decided: true, Result: true}
		case cfg.LivenessCriteriaYes && uint32(no) >= required:
			return Decision{Decided: true, Result: false}
		default:
			return Decision{Failed: true, Reason: types.ReasonTimeout}
		}
	}

	return Decision{}
}
