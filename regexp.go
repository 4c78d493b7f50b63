package automaton

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	u "github.com/araddon/gou"
)

type Kind int

const (
	REGEXP_UNION         = Kind(iota) // The union of two expressions
	REGEXP_CONCATENATION              // A sequence of two expressions
	REGEXP_INTERSECTION               // The intersection of two expressions
	REGEXP_OPTIONAL                   // An optional expression
	REGEXP_REPEAT                     // An expression that repeats
	REGEXP_REPEAT_MIN                 // An expression that repeats a minimum number of times
	REGEXP_REPEAT_MINMAX              // An expression that repeats a minimum and maximum number of times
	REGEXP_COMPLEMENT                 // The complement of an expression
	REGEXP_CHAR                       // A Character
	REGEXP_CHAR_RANGE                 // A Character range
	REGEXP_ANYCHAR                    // Any Character allowed
	REGEXP_EMPTY                      // An empty expression
	REGEXP_STRING                     // A string expression
	REGEXP_ANYSTRING                  // Any string allowed
	REGEXP_AUTOMATON                  // An Automaton expression
	REGEXP_INTERVAL                   // An Interval expression
)

var kindNames = [...]string{
	"REGEXP_UNION", "REGEXP_CONCATENATION", "REGEXP_INTERSECTION", "REGEXP_OPTIONAL", "REGEXP_REPEAT",
	"REGEXP_REPEAT_MIN", "REGEXP_REPEAT_MINMAX", "REGEXP_COMPLEMENT", "REGEXP_CHAR", "REGEXP_CHAR_RANGE",
	"REGEXP_ANYCHAR", "REGEXP_EMPTY", "REGEXP_STRING", "REGEXP_ANYSTRING", "REGEXP_AUTOMATON",
	"REGEXP_INTERVAL",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Syntax flags enable the optional parts of the grammar; the match flag changes how literals match.
const (
	INTERSECTION           = 0x0001 // Syntax flag, enables intersection (&).
	COMPLEMENT             = 0x0002 // Syntax flag, enables complement (~).
	EMPTY                  = 0x0004 // Syntax flag, enables empty language (#).
	ANYSTRING              = 0x0008 // Syntax flag, enables anystring (@).
	AUTOMATON              = 0x0010 // Syntax flag, enables named automata (<identifier>).
	INTERVAL               = 0x0020 // Syntax flag, enables numerical intervals (<n-m>).
	ALL                    = 0xff   // Syntax flag, enables all optional regexp syntax.
	NONE                   = 0x0000 // Syntax flag, enables no optional regexp syntax.
	ASCII_CASE_INSENSITIVE = 0x0100 // Allows case insensitive matching of ASCII characters.
)

// RegExp Regular Expression extension to Automaton.
//
// Regular expressions are built from the following abstract syntax:
//
//	regexp   ::= unionexp
//	unionexp ::= interexp | unionexp     (union)
//	           | interexp
//	interexp ::= concatexp & interexp    (intersection)            [OPTIONAL]
//	           | concatexp
//	concatexp::= repeatexp concatexp     (concatenation)
//	           | repeatexp
//	repeatexp::= repeatexp ?             (zero or one occurrence)
//	           | repeatexp *             (zero or more occurrences)
//	           | repeatexp +             (one or more occurrences)
//	           | repeatexp {n}           (n occurrences)
//	           | repeatexp {n,}          (n or more occurrences)
//	           | repeatexp {n,m}         (n to m occurrences, including both)
//	           | complexp
//	complexp ::= ~ complexp              (complement)              [OPTIONAL]
//	           | charclassexp
//	charclassexp ::= [ charclasses ]     (character class)
//	           | [^ charclasses ]        (negated character class)
//	           | simpleexp
//	charclasses ::= charclass charclasses
//	           | charclass
//	charclass ::= charexp - charexp      (character range, including end-points)
//	           | charexp
//	simpleexp ::= charexp
//	           | .                       (any single character)
//	           | #                       (the empty language)      [OPTIONAL]
//	           | @                       (any string)              [OPTIONAL]
//	           | " <Unicode string without double-quotes> "  (a string)
//	           | ( )                     (the empty string)
//	           | ( unionexp )            (precedence override)
//	           | < <identifier> >        (named automaton)         [OPTIONAL]
//	           | <n-m>                   (numerical interval)      [OPTIONAL]
//	charexp  ::= <Unicode character>     (a single non-reserved character)
//	           | \ <Unicode character>   (a single character)
//
// The productions marked [OPTIONAL] are only allowed if specified by the syntax flags passed to
// NewRegExp.
type RegExp struct {
	kind             Kind
	exp1, exp2       *RegExp
	s                string
	c                int
	min, max, digits int
	from, to         int
	flags            int

	// parser state, only set on the root
	originalString []rune
	pos            int
}

type regExpOption struct {
	syntaxFlags int
	matchFlags  int
}

type RegExpOption func(*regExpOption)

// WithSyntaxFlags selects the optional syntax to accept; the default is ALL.
func WithSyntaxFlags(flags int) RegExpOption {
	return func(o *regExpOption) {
		o.syntaxFlags = flags
	}
}

// WithMatchFlags sets matching options such as ASCII_CASE_INSENSITIVE.
func WithMatchFlags(flags int) RegExpOption {
	return func(o *regExpOption) {
		o.matchFlags = flags
	}
}

// NewRegExp Constructs new RegExp from a string.
func NewRegExp(s string, options ...RegExpOption) (*RegExp, error) {
	opts := &regExpOption{
		syntaxFlags: ALL,
		matchFlags:  0,
	}
	for _, fn := range options {
		fn(opts)
	}

	if opts.syntaxFlags < 0 || opts.syntaxFlags > ALL {
		return nil, illegalSyntax(0, "illegal syntax flag 0x%x", opts.syntaxFlags)
	}
	if opts.matchFlags > 0 && opts.matchFlags <= ALL {
		return nil, illegalSyntax(0, "illegal match flag 0x%x", opts.matchFlags)
	}

	exp := &RegExp{
		originalString: []rune(s),
		flags:          opts.syntaxFlags | opts.matchFlags,
	}

	var e *RegExp
	var err error
	if len(s) == 0 {
		e = makeString(exp.flags, "")
	} else {
		e, err = exp.parseUnionExp()
		if err != nil {
			return nil, err
		}
		if exp.pos < len(exp.originalString) {
			return nil, syntaxError(exp.pos, "end-of-string expected")
		}
	}
	exp.kind = e.kind
	exp.exp1 = e.exp1
	exp.exp2 = e.exp2
	exp.s = e.s
	exp.c = e.c
	exp.min = e.min
	exp.max = e.max
	exp.digits = e.digits
	exp.from = e.from
	exp.to = e.to
	return exp, nil
}

// Kind returns the node type of the root of the parse tree.
func (r *RegExp) Kind() Kind {
	return r.kind
}

// OriginalString returns the source this expression was parsed from.
func (r *RegExp) OriginalString() string {
	return string(r.originalString)
}

func newContainerNode(flags int, kind Kind, exp1, exp2 *RegExp) *RegExp {
	return &RegExp{flags: flags, kind: kind, exp1: exp1, exp2: exp2}
}

func newRepeatingNode(flags int, kind Kind, exp *RegExp, min, max int) *RegExp {
	return &RegExp{flags: flags, kind: kind, exp1: exp, min: min, max: max}
}

func makeUnion(flags int, exp1, exp2 *RegExp) *RegExp {
	return newContainerNode(flags, REGEXP_UNION, exp1, exp2)
}

func isLiteral(exp *RegExp) bool {
	return exp.kind == REGEXP_CHAR || exp.kind == REGEXP_STRING
}

func makeConcatenation(flags int, exp1, exp2 *RegExp) *RegExp {
	if isLiteral(exp1) && isLiteral(exp2) {
		return makeStringRegExp(flags, exp1, exp2)
	}

	var rexp1, rexp2 *RegExp
	if exp1.kind == REGEXP_CONCATENATION && isLiteral(exp1.exp2) && isLiteral(exp2) {
		rexp1 = exp1.exp1
		rexp2 = makeStringRegExp(flags, exp1.exp2, exp2)
	} else if isLiteral(exp1) && exp2.kind == REGEXP_CONCATENATION && isLiteral(exp2.exp1) {
		rexp1 = makeStringRegExp(flags, exp1, exp2.exp1)
		rexp2 = exp2.exp2
	} else {
		rexp1 = exp1
		rexp2 = exp2
	}
	return newContainerNode(flags, REGEXP_CONCATENATION, rexp1, rexp2)
}

func makeStringRegExp(flags int, exp1, exp2 *RegExp) *RegExp {
	var b strings.Builder
	if exp1.kind == REGEXP_STRING {
		b.WriteString(exp1.s)
	} else {
		b.WriteRune(rune(exp1.c))
	}

	if exp2.kind == REGEXP_STRING {
		b.WriteString(exp2.s)
	} else {
		b.WriteRune(rune(exp2.c))
	}

	return makeString(flags, b.String())
}

func makeIntersection(flags int, exp1, exp2 *RegExp) *RegExp {
	return newContainerNode(flags, REGEXP_INTERSECTION, exp1, exp2)
}

func makeOptional(flags int, exp *RegExp) *RegExp {
	return newContainerNode(flags, REGEXP_OPTIONAL, exp, nil)
}

func makeRepeat(flags int, exp *RegExp) *RegExp {
	return newContainerNode(flags, REGEXP_REPEAT, exp, nil)
}

func makeRepeatMin(flags int, exp *RegExp, min int) *RegExp {
	return newRepeatingNode(flags, REGEXP_REPEAT_MIN, exp, min, 0)
}

func makeRepeatRange(flags int, exp *RegExp, min, max int) *RegExp {
	return newRepeatingNode(flags, REGEXP_REPEAT_MINMAX, exp, min, max)
}

func makeComplement(flags int, exp *RegExp) *RegExp {
	return newContainerNode(flags, REGEXP_COMPLEMENT, exp, nil)
}

func makeChar(flags int, c int) *RegExp {
	return &RegExp{flags: flags, kind: REGEXP_CHAR, c: c}
}

func makeCharRange(flags, from, to int) *RegExp {
	return &RegExp{flags: flags, kind: REGEXP_CHAR_RANGE, from: from, to: to}
}

func makeAnyChar(flags int) *RegExp {
	return newContainerNode(flags, REGEXP_ANYCHAR, nil, nil)
}

func makeEmpty(flags int) *RegExp {
	return newContainerNode(flags, REGEXP_EMPTY, nil, nil)
}

func makeString(flags int, s string) *RegExp {
	return &RegExp{flags: flags, kind: REGEXP_STRING, s: s}
}

func makeAnyString(flags int) *RegExp {
	return newContainerNode(flags, REGEXP_ANYSTRING, nil, nil)
}

func makeAutomaton(flags int, s string) *RegExp {
	return &RegExp{flags: flags, kind: REGEXP_AUTOMATON, s: s}
}

func makeInterval(flags, min, max, digits int) *RegExp {
	return &RegExp{flags: flags, kind: REGEXP_INTERVAL, min: min, max: max, digits: digits}
}

// Provider resolves a named automaton referenced as <name>. It returns nil when the name is unknown.
type Provider func(name string) (*Automaton, error)

type toAutomatonOption struct {
	automata             map[string]*Automaton
	provider             Provider
	determinizeWorkLimit int
	minimize             bool
}

type ToAutomatonOption func(*toAutomatonOption)

// WithAutomata resolves <name> references from a map.
func WithAutomata(automata map[string]*Automaton) ToAutomatonOption {
	return func(o *toAutomatonOption) {
		o.automata = automata
	}
}

// WithProvider resolves <name> references the map does not know.
func WithProvider(provider Provider) ToAutomatonOption {
	return func(o *toAutomatonOption) {
		o.provider = provider
	}
}

// WithDeterminizeWorkLimit bounds the effort of every determinization; the default is
// DEFAULT_DETERMINIZE_WORK_LIMIT.
func WithDeterminizeWorkLimit(limit int) ToAutomatonOption {
	return func(o *toAutomatonOption) {
		o.determinizeWorkLimit = limit
	}
}

// WithMinimize controls whether every composite sub-automaton is minimized; the default is true.
func WithMinimize(minimize bool) ToAutomatonOption {
	return func(o *toAutomatonOption) {
		o.minimize = minimize
	}
}

// ToAutomaton Constructs new Automaton from this RegExp.
func (r *RegExp) ToAutomaton(options ...ToAutomatonOption) (*Automaton, error) {
	opts := &toAutomatonOption{
		determinizeWorkLimit: DEFAULT_DETERMINIZE_WORK_LIMIT,
		minimize:             true,
	}
	for _, fn := range options {
		fn(opts)
	}

	a, err := r.toAutomatonInternal(opts)
	if err != nil {
		return nil, fmt.Errorf("regexp %q: %w", r.OriginalString(), err)
	}
	return a, nil
}

func (r *RegExp) minimize(a *Automaton, opts *toAutomatonOption) (*Automaton, error) {
	if !opts.minimize {
		return a, nil
	}
	return Minimize(a, opts.determinizeWorkLimit)
}

// repeatEmpty is the repetition of the empty language: only zero repetitions match.
func (r *RegExp) repeatEmpty(min int) *Automaton {
	if min > 0 {
		return defaultAutomata.MakeEmpty()
	}
	return defaultAutomata.MakeEmptyString()
}

// repeatTooLarge reports whether times copies of a exceed workLimit states. Every copy adds at
// least one state; the comparison divides so a huge count cannot overflow.
func repeatTooLarge(a *Automaton, times, workLimit int) bool {
	numStates := len(a.Singleton()) + 1
	if !a.IsSingleton() {
		numStates = a.GetNumStates()
	}
	perCopy := max(numStates-1, 1)
	return times > workLimit/perCopy
}

func (r *RegExp) toAutomatonInternal(opts *toAutomatonOption) (*Automaton, error) {
	switch r.kind {
	case REGEXP_UNION, REGEXP_CONCATENATION:
		list := make([]*Automaton, 0)
		if err := r.findLeaves(r.exp1, r.kind, &list, opts); err != nil {
			return nil, err
		}
		if err := r.findLeaves(r.exp2, r.kind, &list, opts); err != nil {
			return nil, err
		}
		if r.kind == REGEXP_UNION {
			return r.minimize(Union(list...), opts)
		}
		return r.minimize(Concatenate(list...), opts)

	case REGEXP_INTERSECTION:
		a1, err := r.exp1.toAutomatonInternal(opts)
		if err != nil {
			return nil, err
		}
		a2, err := r.exp2.toAutomatonInternal(opts)
		if err != nil {
			return nil, err
		}
		return r.minimize(Intersection(a1, a2), opts)

	case REGEXP_OPTIONAL:
		a1, err := r.exp1.toAutomatonInternal(opts)
		if err != nil {
			return nil, err
		}
		return r.minimize(Optional(a1), opts)

	case REGEXP_REPEAT:
		a1, err := r.exp1.toAutomatonInternal(opts)
		if err != nil {
			return nil, err
		}
		return r.minimize(Repeat(a1), opts)

	case REGEXP_REPEAT_MIN:
		a1, err := r.exp1.toAutomatonInternal(opts)
		if err != nil {
			return nil, err
		}
		if !a1.IsSingleton() && a1.GetNumStates() == 0 {
			return r.repeatEmpty(r.min), nil
		}
		if repeatTooLarge(a1, r.min, opts.determinizeWorkLimit) {
			u.Debugf("regexp repeat {%d,} exceeds work limit %d", r.min, opts.determinizeWorkLimit)
			return nil, tooComplex(opts.determinizeWorkLimit)
		}
		return r.minimize(RepeatMin(a1, r.min), opts)

	case REGEXP_REPEAT_MINMAX:
		a1, err := r.exp1.toAutomatonInternal(opts)
		if err != nil {
			return nil, err
		}
		if !a1.IsSingleton() && a1.GetNumStates() == 0 {
			// max < min implies min > 0, which is empty too
			return r.repeatEmpty(r.min), nil
		}
		if repeatTooLarge(a1, r.max, opts.determinizeWorkLimit) {
			u.Debugf("regexp repeat {%d,%d} exceeds work limit %d", r.min, r.max, opts.determinizeWorkLimit)
			return nil, tooComplex(opts.determinizeWorkLimit)
		}
		return r.minimize(RepeatRange(a1, r.min, r.max), opts)

	case REGEXP_COMPLEMENT:
		a1, err := r.exp1.toAutomatonInternal(opts)
		if err != nil {
			return nil, err
		}
		a, err := Complement(a1, opts.determinizeWorkLimit)
		if err != nil {
			return nil, err
		}
		return r.minimize(a, opts)

	case REGEXP_CHAR:
		if r.check(ASCII_CASE_INSENSITIVE) {
			return r.toCaseInsensitiveChar(r.c, opts)
		}
		return defaultAutomata.MakeChar(r.c), nil

	case REGEXP_CHAR_RANGE:
		return defaultAutomata.MakeCharRange(r.from, r.to), nil

	case REGEXP_ANYCHAR:
		return defaultAutomata.MakeAnyChar(), nil

	case REGEXP_EMPTY:
		return defaultAutomata.MakeEmpty(), nil

	case REGEXP_STRING:
		if r.check(ASCII_CASE_INSENSITIVE) {
			return r.toCaseInsensitiveString(opts)
		}
		return defaultAutomata.MakeString(r.s), nil

	case REGEXP_ANYSTRING:
		return defaultAutomata.MakeAnyString(), nil

	case REGEXP_AUTOMATON:
		var aa *Automaton
		if opts.automata != nil {
			aa = opts.automata[r.s]
		}
		if aa == nil && opts.provider != nil {
			var err error
			aa, err = opts.provider(r.s)
			if err != nil {
				return nil, err
			}
		}
		if aa == nil {
			return nil, fmt.Errorf("%w: '%s'", ErrAutomatonNotFound, r.s)
		}
		return aa, nil

	case REGEXP_INTERVAL:
		return defaultAutomata.MakeDecimalInterval(r.min, r.max, r.digits)
	}
	return nil, fmt.Errorf("%w: unknown node %s", ErrIllegalArgument, r.kind)
}

func (r *RegExp) toCaseInsensitiveChar(codepoint int, opts *toAutomatonOption) (*Automaton, error) {
	case1 := defaultAutomata.MakeChar(codepoint)
	// For now we only work with ASCII characters
	if codepoint > 128 {
		return case1, nil
	}

	c := rune(codepoint)
	altCase := unicode.ToLower(c)
	if unicode.IsLower(c) {
		altCase = unicode.ToUpper(c)
	}
	if int(altCase) == codepoint {
		return case1, nil
	}
	return r.minimize(Union(case1, defaultAutomata.MakeChar(int(altCase))), opts)
}

func (r *RegExp) toCaseInsensitiveString(opts *toAutomatonOption) (*Automaton, error) {
	list := make([]*Automaton, 0, len(r.s))
	for _, v := range r.s {
		a, err := r.toCaseInsensitiveChar(int(v), opts)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return r.minimize(Concatenate(list...), opts)
}

func (r *RegExp) findLeaves(exp *RegExp, kind Kind, list *[]*Automaton, opts *toAutomatonOption) error {
	if exp.kind == kind {
		if err := r.findLeaves(exp.exp1, kind, list, opts); err != nil {
			return err
		}
		return r.findLeaves(exp.exp2, kind, list, opts)
	}

	a, err := exp.toAutomatonInternal(opts)
	if err != nil {
		return err
	}
	*list = append(*list, a)
	return nil
}

// String Constructs string from parsed regular expression.
func (r *RegExp) String() string {
	b := new(strings.Builder)
	r.toStringBuilder(b)
	return b.String()
}

func (r *RegExp) toStringBuilder(b *strings.Builder) {
	switch r.kind {
	case REGEXP_UNION:
		b.WriteString("(")
		r.exp1.toStringBuilder(b)
		b.WriteString("|")
		r.exp2.toStringBuilder(b)
		b.WriteString(")")
	case REGEXP_CONCATENATION:
		r.exp1.toStringBuilder(b)
		r.exp2.toStringBuilder(b)
	case REGEXP_INTERSECTION:
		b.WriteString("(")
		r.exp1.toStringBuilder(b)
		b.WriteString("&")
		r.exp2.toStringBuilder(b)
		b.WriteString(")")
	case REGEXP_OPTIONAL:
		b.WriteString("(")
		r.exp1.toStringBuilder(b)
		b.WriteString(")?")
	case REGEXP_REPEAT:
		b.WriteString("(")
		r.exp1.toStringBuilder(b)
		b.WriteString(")*")
	case REGEXP_REPEAT_MIN:
		b.WriteString("(")
		r.exp1.toStringBuilder(b)
		fmt.Fprintf(b, "){%d,}", r.min)
	case REGEXP_REPEAT_MINMAX:
		b.WriteString("(")
		r.exp1.toStringBuilder(b)
		fmt.Fprintf(b, "){%d,%d}", r.min, r.max)
	case REGEXP_COMPLEMENT:
		b.WriteString("~(")
		r.exp1.toStringBuilder(b)
		b.WriteString(")")
	case REGEXP_CHAR:
		b.WriteString("\\")
		b.WriteRune(rune(r.c))
	case REGEXP_CHAR_RANGE:
		b.WriteString("[\\")
		b.WriteRune(rune(r.from))
		b.WriteString("-\\")
		b.WriteRune(rune(r.to))
		b.WriteString("]")
	case REGEXP_ANYCHAR:
		b.WriteString(".")
	case REGEXP_EMPTY:
		b.WriteString("#")
	case REGEXP_STRING:
		b.WriteString("\"")
		b.WriteString(r.s)
		b.WriteString("\"")
	case REGEXP_ANYSTRING:
		b.WriteString("@")
	case REGEXP_AUTOMATON:
		b.WriteString("<")
		b.WriteString(r.s)
		b.WriteString(">")
	case REGEXP_INTERVAL:
		s1 := strconv.Itoa(r.min)
		s2 := strconv.Itoa(r.max)
		b.WriteString("<")
		if r.digits > 0 {
			b.WriteString(strings.Repeat("0", max(r.digits-len(s1), 0)))
		}
		b.WriteString(s1)
		b.WriteString("-")
		if r.digits > 0 {
			b.WriteString(strings.Repeat("0", max(r.digits-len(s2), 0)))
		}
		b.WriteString(s2)
		b.WriteString(">")
	}
}

// GetIdentifiers Returns the sorted set of automaton identifiers that occur in this regular expression.
func (r *RegExp) GetIdentifiers() []string {
	set := make(map[string]struct{})
	r.getIdentifiers(set)
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *RegExp) getIdentifiers(set map[string]struct{}) {
	switch r.kind {
	case REGEXP_UNION, REGEXP_CONCATENATION, REGEXP_INTERSECTION:
		r.exp1.getIdentifiers(set)
		r.exp2.getIdentifiers(set)
	case REGEXP_OPTIONAL, REGEXP_REPEAT, REGEXP_REPEAT_MIN, REGEXP_REPEAT_MINMAX, REGEXP_COMPLEMENT:
		r.exp1.getIdentifiers(set)
	case REGEXP_AUTOMATON:
		set[r.s] = struct{}{}
	}
}

func (r *RegExp) more() bool {
	return r.pos < len(r.originalString)
}

func (r *RegExp) peek(s string) bool {
	return r.more() && strings.ContainsRune(s, r.originalString[r.pos])
}

func (r *RegExp) match(c int) bool {
	if r.pos >= len(r.originalString) {
		return false
	}
	if r.originalString[r.pos] == rune(c) {
		r.pos++
		return true
	}
	return false
}

func (r *RegExp) next() (int, error) {
	if !r.more() {
		return 0, syntaxError(r.pos, "unexpected end-of-string")
	}
	ch := r.originalString[r.pos]
	r.pos++
	return int(ch), nil
}

func (r *RegExp) check(flags int) bool {
	return r.flags&flags != 0
}

func (r *RegExp) parseUnionExp() (*RegExp, error) {
	e, err := r.parseInterExp()
	if err != nil {
		return nil, err
	}
	if r.match('|') {
		e2, err := r.parseUnionExp()
		if err != nil {
			return nil, err
		}
		e = makeUnion(r.flags, e, e2)
	}
	return e, nil
}

func (r *RegExp) parseInterExp() (*RegExp, error) {
	e, err := r.parseConcatExp()
	if err != nil {
		return nil, err
	}
	if r.check(INTERSECTION) && r.match('&') {
		e2, err := r.parseInterExp()
		if err != nil {
			return nil, err
		}
		e = makeIntersection(r.flags, e, e2)
	}
	return e, nil
}

func (r *RegExp) parseConcatExp() (*RegExp, error) {
	e, err := r.parseRepeatExp()
	if err != nil {
		return nil, err
	}
	if r.more() && !r.peek(")|") && (!r.check(INTERSECTION) || !r.peek("&")) {
		e2, err := r.parseConcatExp()
		if err != nil {
			return nil, err
		}
		e = makeConcatenation(r.flags, e, e2)
	}
	return e, nil
}

func (r *RegExp) parseInt() (int, bool, error) {
	start := r.pos
	for r.peek("0123456789") {
		r.pos++
	}
	if start == r.pos {
		return 0, false, nil
	}
	n, err := strconv.Atoi(string(r.originalString[start:r.pos]))
	if err != nil {
		return 0, false, syntaxError(start, "integer out of range")
	}
	return n, true, nil
}

func (r *RegExp) parseRepeatExp() (*RegExp, error) {
	e, err := r.parseComplExp()
	if err != nil {
		return nil, err
	}

	for r.peek("?*+{") {
		if r.match('?') {
			e = makeOptional(r.flags, e)
		} else if r.match('*') {
			e = makeRepeat(r.flags, e)
		} else if r.match('+') {
			e = makeRepeatMin(r.flags, e, 1)
		} else if r.match('{') {
			n, ok, err := r.parseInt()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, syntaxError(r.pos, "integer expected")
			}

			m := n
			if r.match(',') {
				m, ok, err = r.parseInt()
				if err != nil {
					return nil, err
				}
				if !ok {
					m = -1
				}
			}
			if !r.match('}') {
				return nil, syntaxError(r.pos, "expected '}'")
			}

			if m == -1 {
				e = makeRepeatMin(r.flags, e, n)
			} else {
				e = makeRepeatRange(r.flags, e, n, m)
			}
		}
	}

	return e, nil
}

func (r *RegExp) parseComplExp() (*RegExp, error) {
	if r.check(COMPLEMENT) && r.match('~') {
		e, err := r.parseComplExp()
		if err != nil {
			return nil, err
		}
		return makeComplement(r.flags, e), nil
	}
	return r.parseCharClassExp()
}

func (r *RegExp) parseCharClassExp() (*RegExp, error) {
	if r.match('[') {
		negate := r.match('^')
		e, err := r.parseCharClasses()
		if err != nil {
			return nil, err
		}
		if negate {
			e = makeIntersection(r.flags, makeAnyChar(r.flags), makeComplement(r.flags, e))
		}
		if !r.match(']') {
			return nil, syntaxError(r.pos, "expected ']'")
		}
		return e, nil
	}
	return r.parseSimpleExp()
}

func (r *RegExp) parseCharClasses() (*RegExp, error) {
	e, err := r.parseCharClass()
	if err != nil {
		return nil, err
	}
	for r.more() && !r.peek("]") {
		e2, err := r.parseCharClass()
		if err != nil {
			return nil, err
		}
		e = makeUnion(r.flags, e, e2)
	}
	return e, nil
}

func (r *RegExp) parseCharClass() (*RegExp, error) {
	start := r.pos
	c, err := r.parseCharExp()
	if err != nil {
		return nil, err
	}
	if r.match('-') {
		to, err := r.parseCharExp()
		if err != nil {
			return nil, err
		}
		if c > to {
			return nil, syntaxError(start, "invalid range: from (%d) cannot be > to (%d)", c, to)
		}
		return makeCharRange(r.flags, c, to), nil
	}
	return makeChar(r.flags, c), nil
}

func (r *RegExp) parseSimpleExp() (*RegExp, error) {
	if r.match('.') {
		return makeAnyChar(r.flags), nil
	} else if r.check(EMPTY) && r.match('#') {
		return makeEmpty(r.flags), nil
	} else if r.check(ANYSTRING) && r.match('@') {
		return makeAnyString(r.flags), nil
	} else if r.match('"') {
		start := r.pos
		for r.more() && !r.peek("\"") {
			r.pos++
		}
		if !r.match('"') {
			return nil, syntaxError(r.pos, "expected '\"'")
		}
		return makeString(r.flags, string(r.originalString[start:r.pos-1])), nil
	} else if r.match('(') {
		if r.match(')') {
			return makeString(r.flags, ""), nil
		}
		e, err := r.parseUnionExp()
		if err != nil {
			return nil, err
		}
		if !r.match(')') {
			return nil, syntaxError(r.pos, "expected ')'")
		}
		return e, nil
	} else if (r.check(AUTOMATON) || r.check(INTERVAL)) && r.match('<') {
		return r.parseAngleExp()
	}

	c, err := r.parseCharExp()
	if err != nil {
		return nil, err
	}
	return makeChar(r.flags, c), nil
}

// parseAngleExp parses the remainder of <identifier> or <n-m> after the '<'.
func (r *RegExp) parseAngleExp() (*RegExp, error) {
	start := r.pos
	for r.more() && !r.peek(">") {
		r.pos++
	}
	if !r.match('>') {
		return nil, syntaxError(r.pos, "expected '>'")
	}

	s := string(r.originalString[start : r.pos-1])
	i := strings.IndexByte(s, '-')
	if i == -1 {
		if !r.check(AUTOMATON) {
			return nil, illegalSyntax(r.pos-1, "interval syntax error")
		}
		return makeAutomaton(r.flags, s), nil
	}

	if !r.check(INTERVAL) {
		return nil, illegalSyntax(r.pos-1, "illegal identifier")
	}
	if i == 0 || i == len(s)-1 || i != strings.LastIndexByte(s, '-') {
		return nil, illegalSyntax(r.pos-1, "interval syntax error")
	}

	smin, smax := s[:i], s[i+1:]
	imin, err := strconv.Atoi(smin)
	if err != nil || imin < 0 {
		return nil, illegalSyntax(r.pos-1, "interval syntax error")
	}
	imax, err := strconv.Atoi(smax)
	if err != nil || imax < 0 {
		return nil, illegalSyntax(r.pos-1, "interval syntax error")
	}

	digits := 0
	if len(smin) == len(smax) {
		digits = len(smin)
	}
	if imin > imax {
		imin, imax = imax, imin
	}
	return makeInterval(r.flags, imin, imax, digits), nil
}

func (r *RegExp) parseCharExp() (int, error) {
	r.match('\\')
	return r.next()
}
