package entry

import (
	"context"
	"strings"
)

// Union is an entry satisfied by exactly one of its alternatives.
type Union struct {
	base
	alts []Entry
}

// Alternatives returns the alternatives in declaration order.
func (u *Union) Alternatives() []Entry {
	return u.alts
}

// match validates every alternative and returns the indexes of those that
// accept doc together with the outcome for zero matches.
func (u *Union) match(doc Document) ([]int, error) {
	var (
		matched []int
		invalid error
		unmet   [][]string
	)
	for i, alt := range u.alts {
		err := alt.Validate(doc)
		switch e := err.(type) {
		case nil:
			matched = append(matched, i)
		case *MissingArgumentsError:
			unmet = append(unmet, e.Names())
		case *TooManyArgumentsError:
			return nil, e
		default:
			if invalid == nil {
				invalid = err
			}
		}
	}
	if len(matched) > 0 {
		return matched, nil
	}
	if invalid != nil {
		return nil, invalid
	}
	if u.spec.HasDefault || !u.spec.Required {
		return nil, nil
	}
	return nil, &MissingArgumentsError{Alternatives: unmet}
}

func (u *Union) Validate(doc Document) error {
	matched, err := u.match(doc)
	if err != nil {
		return err
	}
	if len(matched) > 1 {
		return u.ambiguous(matched)
	}
	return nil
}

func (u *Union) ambiguous(matched []int) error {
	sets := make([][]string, 0, len(matched))
	for _, i := range matched {
		sets = append(sets, argumentNames(u.alts[i]))
	}
	return &TooManyArgumentsError{Name: u.spec.Name, Alternatives: sets}
}

func (u *Union) FromWire(ctx context.Context, doc Document, driver any) (any, error) {
	matched, err := u.match(doc)
	if err != nil {
		return nil, err
	}
	switch len(matched) {
	case 0:
		return u.spec.Default, nil
	case 1:
		return u.alts[matched[0]].FromWire(ctx, doc, driver)
	default:
		return nil, u.ambiguous(matched)
	}
}

// ToWire uses the first alternative able to represent native.
func (u *Union) ToWire(native any) (any, error) {
	reasons := make([]string, 0, len(u.alts))
	for _, alt := range u.alts {
		out, err := alt.ToWire(native)
		if err == nil {
			return out, nil
		}
		reasons = append(reasons, err.Error())
	}
	return nil, &RepresentationError{Tag: u.tag, Reason: strings.Join(reasons, "; ")}
}

func (u *Union) Arguments() []Argument {
	var out []Argument
	for _, alt := range u.alts {
		for _, a := range alt.Arguments() {
			a.Required = a.Required && u.spec.Required
			if u.spec.HasDefault {
				a.Default = u.spec.Default
			}
			out = append(out, a)
		}
	}
	return out
}

func argumentNames(e Entry) []string {
	args := e.Arguments()
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
	}
	return names
}
