// Copyright © 2024 The ELPS authors

package ast

import "sort"

// ValueKind describes the values an attribute accepts.
type ValueKind int

const (
	// ValueBool attributes take true or false and may omit the value.
	ValueBool ValueKind = iota
	// ValueInt attributes take an integer or a parenthesised expression.
	ValueInt
	// ValueString attributes take a quoted string.
	ValueString
	// ValueAny attributes take free-form values that are not checked.
	ValueAny
)

func (k ValueKind) String() string {
	switch k {
	case ValueBool:
		return "boolean"
	case ValueInt:
		return "integer"
	case ValueString:
		return "string"
	default:
		return "expression"
	}
}

// AttributeSpec documents a rule attribute.
type AttributeSpec struct {
	Name string
	Kind ValueKind
	Doc  string
}

var attributeSpecs = []AttributeSpec{
	{"salience", ValueInt, "Priority of the rule. Rules with higher salience fire first when several are activated at once. Accepts an integer or a parenthesised expression."},
	{"enabled", ValueBool, "Whether the rule may fire. Defaults to true."},
	{"no-loop", ValueBool, "Prevents the rule from being reactivated by changes made in its own action."},
	{"lock-on-active", ValueBool, "Prevents reactivation of the rule while its ruleflow or agenda group is active, regardless of what caused the change."},
	{"auto-focus", ValueBool, "Gives focus to the rule's agenda group when the rule is activated."},
	{"refract", ValueBool, "Allows a rule to be reactivated when a fact is modified to the same value. Used together with property reactivity."},
	{"direct", ValueBool, "Fires the rule immediately when matched instead of placing it on the agenda."},
	{"agenda-group", ValueString, "Partitions the agenda. Only rules in the group with focus are allowed to fire."},
	{"activation-group", ValueString, "Only one rule in an activation group fires. The first to fire cancels the pending activations of the others."},
	{"ruleflow-group", ValueString, "Groups rules so that they fire only when the ruleflow node for the group is active."},
	{"dialect", ValueString, "Language used for code expressions in the rule, \"java\" or \"mvel\"."},
	{"date-effective", ValueString, "The rule may only fire after the given date and time."},
	{"date-expires", ValueString, "The rule may not fire after the given date and time."},
	{"calendars", ValueString, "Quartz calendars that schedule when the rule may fire."},
	{"duration", ValueAny, "Delay before the rule fires, in milliseconds. Superseded by timer."},
	{"timer", ValueAny, "Schedules the rule using an interval, cron or expression timer, e.g. timer (int: 30s 5m)."},
}

var attributesByName = func() map[string]AttributeSpec {
	m := make(map[string]AttributeSpec, len(attributeSpecs))
	for _, a := range attributeSpecs {
		m[a.Name] = a
	}
	return m
}()

// LookupAttribute returns the description of a known attribute.
func LookupAttribute(name string) (AttributeSpec, bool) {
	a, ok := attributesByName[name]
	return a, ok
}

// AttributeNames returns the known attribute names in sorted order.
func AttributeNames() []string {
	names := make([]string, 0, len(attributeSpecs))
	for _, a := range attributeSpecs {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}
