package sim

import (
	"fmt"
	"strconv"
	"strings"
)

// A Name is a hierarchical component name such as "Matrix.Arbiter[1]". The
// tokens are separated by dots.
type Name struct {
	Tokens []NameToken
}

// NameToken is one level of a Name. Index is -1 when the token carries no
// square-bracket index.
type NameToken struct {
	ElemName string
	Index    int
}

// String reassembles the name.
func (n Name) String() string {
	parts := make([]string, len(n.Tokens))
	for i, t := range n.Tokens {
		parts[i] = t.ElemName
		if t.Index >= 0 {
			parts[i] += "[" + strconv.Itoa(t.Index) + "]"
		}
	}

	return strings.Join(parts, ".")
}

// Parent returns the name without its last token.
func (n Name) Parent() Name {
	if len(n.Tokens) <= 1 {
		return Name{}
	}

	return Name{Tokens: n.Tokens[:len(n.Tokens)-1]}
}

// ParseName parses a name string. It returns an error if the string does not
// follow the naming convention.
func ParseName(sname string) (Name, error) {
	tokens := strings.Split(sname, ".")
	name := Name{Tokens: make([]NameToken, len(tokens))}

	for i, token := range tokens {
		t, err := parseNameToken(token)
		if err != nil {
			return Name{}, fmt.Errorf("name %q is not valid: %w", sname, err)
		}

		name.Tokens[i] = t
	}

	return name, nil
}

func parseNameToken(token string) (NameToken, error) {
	elem, rest, hasIndex := strings.Cut(token, "[")
	if err := elemNameMustBeValid(elem); err != nil {
		return NameToken{}, err
	}

	if !hasIndex {
		if strings.Contains(token, "]") {
			return NameToken{}, fmt.Errorf("unmatched bracket in %q", token)
		}

		return NameToken{ElemName: elem, Index: -1}, nil
	}

	digits, ok := strings.CutSuffix(rest, "]")
	if !ok || strings.ContainsAny(digits, "[]") {
		return NameToken{}, fmt.Errorf("unmatched bracket in %q", token)
	}

	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 {
		return NameToken{}, fmt.Errorf("index of %q must be a non-negative integer", token)
	}

	return NameToken{ElemName: elem, Index: index}, nil
}

func elemNameMustBeValid(elem string) error {
	if elem == "" {
		return fmt.Errorf("name element must not be empty")
	}

	if strings.ContainsAny(elem, "_\"'- ") {
		return fmt.Errorf("name element %q contains an invalid character", elem)
	}

	if elem[0] < 'A' || elem[0] > 'Z' {
		return fmt.Errorf("name element %q must start with a capital letter", elem)
	}

	return nil
}

// NameMustBeValid panics if the name does not follow the naming convention.
//  1. It is organized hierarchically, for example "Matrix.Decoder".
//  2. Individual elements are not empty.
//  3. Individual elements are named in capitalized CamelCase.
//  4. Elements in a series use a single square-bracket index.
func NameMustBeValid(name string) {
	if _, err := ParseName(name); err != nil {
		panic(err.Error())
	}
}

// BuildName builds a name from a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex builds a name from a parent name, an element name and an
// index.
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}
