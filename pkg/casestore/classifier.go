package casestore

import (
	"strings"

	"orchestrator/pkg/proto"
)

// classifyRule is one bucket of the first-match-wins keyword classifier.
type classifyRule struct {
	category proto.CaseCategory
	strategy proto.CaseStrategy
	keywords []string
}

// classifyRules is evaluated in order; the first rule whose keyword appears
// anywhere in the issue text (case-insensitive) wins. Order matters: damaged
// is checked before shipping before billing before account, per spec §3.
var classifyRules = []classifyRule{
	{
		category: proto.CategoryDamaged,
		strategy: proto.StrategyRefund,
		keywords: []string{"damaged", "broken", "shattered", "cracked", "defective"},
	},
	{
		category: proto.CategoryShipping,
		strategy: proto.StrategyHuman,
		keywords: []string{"shipping", "delivery", "shipment", "tracking", "delayed", "lost package"},
	},
	{
		category: proto.CategoryBilling,
		strategy: proto.StrategyRefund,
		keywords: []string{"billing", "charge", "charged", "refund", "invoice", "payment"},
	},
	{
		category: proto.CategoryAccount,
		strategy: proto.StrategyHuman,
		keywords: []string{"account", "login", "password", "locked out", "sign in"},
	},
}

// classify runs the keyword classifier over issue text. Unmatched text falls
// into CategoryUnknown / StrategyHuman.
func classify(issue string) (proto.CaseCategory, proto.CaseStrategy) {
	lower := strings.ToLower(issue)
	for _, rule := range classifyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category, rule.strategy
			}
		}
	}
	return proto.CategoryUnknown, proto.StrategyHuman
}
