package core

import "dircore/pkg/domain"

type (
	DN                 = domain.DN
	RDN                = domain.RDN
	Entry              = domain.Entry
	Attribute          = domain.Attribute
	ValueSet           = domain.ValueSet
	Filter             = domain.Filter
	Scope              = domain.Scope
	Change             = domain.Change
	Action             = domain.Action
	Severity           = domain.Severity
	Violation          = domain.Violation
	Result             = domain.Result
	SearchRequest      = domain.SearchRequest
	RuleViolationError = domain.RuleViolationError
)

const (
	ScopeBase     = domain.ScopeBase
	ScopeOneLevel = domain.ScopeOneLevel
	ScopeSubtree  = domain.ScopeSubtree
)

const (
	ActionAdd    = domain.ActionAdd
	ActionModify = domain.ActionModify
	ActionDelete = domain.ActionDelete
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)
