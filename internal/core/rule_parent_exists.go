package core

import (
	"context"
	"fmt"

	"dircore/pkg/domain"
)

// NewParentExistsRule returns the default in-transaction rule requiring every
// added entry's parent to already exist. The suffix entry itself is exempt:
// it is the hierarchy root and has no parent.
func NewParentExistsRule() domain.Rule {
	return parentExistsRule{}
}

type parentExistsRule struct{}

func (parentExistsRule) Name() string { return "parent_exists" }

func (parentExistsRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Action != domain.ActionAdd {
			continue
		}
		if change.DN.Equal(view.Suffix()) {
			continue
		}
		parent, ok := change.DN.ParentWithin(view.Suffix())
		if !ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "parent_exists",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("entry %s lies outside the suffix", change.DN),
				DN:       change.DN,
			})
			continue
		}
		if _, found := view.FindEntry(parent); !found {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "parent_exists",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("parent %s of entry %s does not exist", parent, change.DN),
				DN:       change.DN,
			})
		}
	}
	return res, nil
}
