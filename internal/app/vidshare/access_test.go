package vidshare

import (
	"testing"
	"time"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name  string
		link  ShareableLink
		email string
		want  Decision
	}{
		{
			name:  "public allows anonymous",
			link:  ShareableLink{Public: true},
			email: "",
			want:  DecisionAllow,
		},
		{
			name:  "public allows any signed-in viewer",
			link:  ShareableLink{Public: true},
			email: "stranger@example.com",
			want:  DecisionAllow,
		},
		{
			name:  "private anonymous needs auth",
			link:  ShareableLink{AccessEmails: []string{"a@example.com"}},
			email: "",
			want:  DecisionNeedAuth,
		},
		{
			name:  "private member allowed",
			link:  ShareableLink{AccessEmails: []string{"a@example.com", "b@example.com"}},
			email: "b@example.com",
			want:  DecisionAllow,
		},
		{
			name:  "private non-member denied",
			link:  ShareableLink{AccessEmails: []string{"a@example.com"}},
			email: "c@example.com",
			want:  DecisionDeny,
		},
		{
			name:  "membership is case sensitive",
			link:  ShareableLink{AccessEmails: []string{"a@example.com"}},
			email: "A@example.com",
			want:  DecisionDeny,
		},
		{
			name:  "empty access list denies everyone",
			link:  ShareableLink{AccessEmails: []string{}},
			email: "a@example.com",
			want:  DecisionDeny,
		},
		{
			name:  "expired public link",
			link:  ShareableLink{Public: true, ExpiresAt: &past},
			email: "",
			want:  DecisionExpired,
		},
		{
			name:  "expired dominates membership",
			link:  ShareableLink{AccessEmails: []string{"a@example.com"}, ExpiresAt: &past},
			email: "a@example.com",
			want:  DecisionExpired,
		},
		{
			name:  "expired dominates missing auth",
			link:  ShareableLink{AccessEmails: []string{"a@example.com"}, ExpiresAt: &past},
			email: "",
			want:  DecisionExpired,
		},
		{
			name:  "future expiry still allows",
			link:  ShareableLink{Public: true, ExpiresAt: &future},
			email: "",
			want:  DecisionAllow,
		},
		{
			name:  "expiry exactly now is not yet expired",
			link:  ShareableLink{Public: true, ExpiresAt: &now},
			email: "",
			want:  DecisionAllow,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.link, tc.email, now); got != tc.want {
				t.Fatalf("Evaluate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDecisionString(t *testing.T) {
	if DecisionAllow.String() != "allow" || DecisionExpired.String() != "expired" ||
		DecisionNeedAuth.String() != "need_auth" || DecisionDeny.String() != "deny" {
		t.Fatal("unexpected decision labels")
	}
}
