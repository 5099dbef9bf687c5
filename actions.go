package ntfy

import (
	"sort"
	"strings"
)

// Action is an action button attached to a published message. The concrete
// types are ViewAction, BroadcastAction and HTTPAction.
type Action interface {
	// actionType returns the wire discriminant of the action.
	actionType() ActionType
	// params returns the ordered key=value pairs following the discriminant.
	params() []actionParam
}

type actionParam struct {
	key   string
	value string
}

// ViewAction opens a website or app when tapped.
type ViewAction struct {
	// Label is the button text.
	Label string
	// URL is opened when the button is tapped.
	URL string
	// Clear dismisses the notification after the button is tapped.
	Clear bool
}

func (a ViewAction) actionType() ActionType { return ActionView }

func (a ViewAction) params() []actionParam {
	p := []actionParam{
		{"label", a.Label},
		{"url", a.URL},
	}
	if a.Clear {
		p = append(p, actionParam{"clear", "true"})
	}
	return p
}

// BroadcastAction sends an Android broadcast intent when tapped.
type BroadcastAction struct {
	Label string
	// Intent is the intent name; the service default applies when empty.
	Intent string
	// Extras are attached to the intent as string extras.
	Extras map[string]string
	Clear  bool
}

func (a BroadcastAction) actionType() ActionType { return ActionBroadcast }

func (a BroadcastAction) params() []actionParam {
	p := []actionParam{{"label", a.Label}}
	if a.Intent != "" {
		p = append(p, actionParam{"intent", a.Intent})
	}
	p = append(p, mapParams("extras", a.Extras)...)
	if a.Clear {
		p = append(p, actionParam{"clear", "true"})
	}
	return p
}

// HTTPAction sends an HTTP request when tapped.
type HTTPAction struct {
	Label string
	URL   string
	// Method defaults to POST on the service side when empty.
	Method  string
	Headers map[string]string
	Body    string
	Clear   bool
}

func (a HTTPAction) actionType() ActionType { return ActionHTTP }

func (a HTTPAction) params() []actionParam {
	p := []actionParam{
		{"label", a.Label},
		{"url", a.URL},
	}
	if a.Method != "" {
		p = append(p, actionParam{"method", a.Method})
	}
	p = append(p, mapParams("headers", a.Headers)...)
	if a.Body != "" {
		p = append(p, actionParam{"body", a.Body})
	}
	if a.Clear {
		p = append(p, actionParam{"clear", "true"})
	}
	return p
}

// mapParams flattens a map into dotted key=value pairs (e.g. headers.k=v),
// sorted for deterministic output.
func mapParams(prefix string, m map[string]string) []actionParam {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p := make([]actionParam, 0, len(m))
	for _, k := range keys {
		p = append(p, actionParam{prefix + "." + k, m[k]})
	}
	return p
}

// serializeActions renders actions into the header grammar the service
// expects: semicolon-separated actions, each a comma-separated list of
// key=value pairs led by the action type.
func serializeActions(actions []Action) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		segs := []string{"action=" + string(a.actionType())}
		for _, p := range a.params() {
			segs = append(segs, p.key+"="+quoteActionValue(p.value))
		}
		parts = append(parts, strings.Join(segs, ", "))
	}
	return strings.Join(parts, "; ")
}

// quoteActionValue wraps a value in double quotes when it contains grammar
// delimiters, escaping backslashes and quotes.
func quoteActionValue(v string) string {
	if !strings.ContainsAny(v, ",;='\"\\ ") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}
