package filter

// Builder assembles a Filter's flat bytecode via a fluent sequence of
// predicate additions and boolean combinators. A zero Builder is ready to
// use.
type Builder struct {
	code []instr
}

// New returns an empty Builder.
func New() *Builder { return &Builder{} }

// Is adds an IS(offset, tag) predicate.
func (b *Builder) Is(offset int, tag TypeTag) *Builder {
	b.code = append(b.code, instr{op: opIs, offset: offset, tag: tag})
	return b
}

// IsLong adds an IS_LONG(offset) predicate.
func (b *Builder) IsLong(offset int) *Builder {
	b.code = append(b.code, instr{op: opIsLong, offset: offset})
	return b
}

// IsPresent adds an IS_PRESENT(offset) predicate: true iff offset resolves
// to a non-Null value.
func (b *Builder) IsPresent(offset int) *Builder {
	b.code = append(b.code, instr{op: opIsPresent, offset: offset})
	return b
}

// IsApplying adds an IS_APPLYING(kind) predicate: true iff the task is
// currently inside a container-apply scope of the given kind.
func (b *Builder) IsApplying(kind ContainerKind) *Builder {
	b.code = append(b.code, instr{op: opIsApplying, kind: kind})
	return b
}

// And combines the two most recently added predicates with AND.
func (b *Builder) And() *Builder {
	b.code = append(b.code, instr{op: opAnd})
	return b
}

// Or combines the two most recently added predicates with OR.
func (b *Builder) Or() *Builder {
	b.code = append(b.code, instr{op: opOr})
	return b
}

// Build finalizes the Filter. The Builder must not be reused afterward.
func (b *Builder) Build() *Filter {
	return &Filter{code: b.code}
}
