package core

import (
	"context"
	"fmt"

	"dircore/pkg/domain"
)

// NewAttributeSyntaxRule returns the in-transaction rule warning about
// attribute names that fall outside the shared name grammar. Such entries
// still commit, but providers configured against those names will never
// match them.
func NewAttributeSyntaxRule() domain.Rule {
	return attributeSyntaxRule{}
}

type attributeSyntaxRule struct{}

func (attributeSyntaxRule) Name() string { return "attribute_syntax" }

func (attributeSyntaxRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.After == nil {
			continue
		}
		for _, attr := range change.After.Attributes {
			if err := domain.ValidateName("attribute", attr.Name); err != nil {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "attribute_syntax",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("entry %s: attribute name %q violates name grammar", change.DN, attr.Name),
					DN:       change.DN,
				})
			}
		}
	}
	return res, nil
}
