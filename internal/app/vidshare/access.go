package vidshare

import "time"

// Decision is the outcome of evaluating a resolution attempt against a link.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionExpired
	DecisionNeedAuth
	DecisionDeny
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionExpired:
		return "expired"
	case DecisionNeedAuth:
		return "need_auth"
	case DecisionDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// Evaluate decides whether a requester may view the video behind link.
// requesterEmail is the caller's verified email; empty means no verified
// identity. Pure function of its inputs.
//
// Expiry is checked first and dominates every other outcome: an expired
// private link reports EXPIRED even when membership would also fail.
// Membership is a case-sensitive exact match against the stored list; no
// normalization is performed anywhere on the write or read path, so the
// comparison here must stay byte-for-byte.
func Evaluate(link ShareableLink, requesterEmail string, now time.Time) Decision {
	if link.ExpiresAt != nil && now.After(*link.ExpiresAt) {
		return DecisionExpired
	}
	if link.Public {
		return DecisionAllow
	}
	if requesterEmail == "" {
		return DecisionNeedAuth
	}
	for _, email := range link.AccessEmails {
		if email == requesterEmail {
			return DecisionAllow
		}
	}
	return DecisionDeny
}
