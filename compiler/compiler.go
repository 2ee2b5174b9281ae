package compiler

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"
	"strings"

	"github.com/xapiens/rpn/macro"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/token"
	"github.com/xapiens/rpn/tokenizer"
	"github.com/xapiens/rpn/value"
)

// Error and ErrorList reuse the standard library's scanner diagnostic
// types directly: position-carrying, sortable, joinable compile errors.
// Grammar-level diagnostics that do not require abandoning the whole
// compile (an unknown word, a malformed variable-access form, a stray
// token) accumulate into an ErrorList via Compiler.errorf the same way
// a resolver pass keeps scanning after recording a fault, rather than
// failing at the first one found.
type Error = scanner.Error
type ErrorList = scanner.ErrorList

// Compiler holds the state of a single compilation: a token source, the
// built-in operation registry, and the table of user words defined so far
// (pre-seeded with any ambient words the engine compiles ahead of the
// user's program, and growing as inline-word-defs are compiled).
//
// Compiler implements operation.SetUpContext: PeekReference/NextReference
// let an operation's SetUp method (if/else/then, begin/while/repeat)
// consume further references at compile time to pre-resolve its structure,
// and PreviousReference lets apply's SetUp take back the reference compiled
// just before it. Compile itself drives the grammar by peeking and
// consuming tokens, and also calls NextReference to build each ordinary
// word of "words".
type Compiler struct {
	tz        *tokenizer.Tokenizer
	registry  *operation.Registry
	words     map[string]*Program
	filename  string
	loopLimit int

	tokBuf *token.Token

	havePeekRef bool
	peekRef     *operation.Reference
	peekRefErr  error

	// building is a stack of reference-sequence frames: compileWords and
	// compileWordBody each push one for the span they're accumulating,
	// and a block operation's own branch (collected via collectUntil)
	// pushes its own nested frame. PreviousReference pops from the top
	// frame, so apply inside a branch reaches back into that branch only.
	building [][]*operation.Reference

	// curPos/curName are the position and name of the reference whose
	// SetUp is currently running, recorded by buildNamedReference just
	// before calling it — the only state a MissingInstructionError raised
	// from PreviousReference needs, since SetUp itself is handed no
	// Reference to read Pos/Name from directly.
	curPos  token.Pos
	curName string

	errs ErrorList
}

// errorf appends one positioned diagnostic to the compile's accumulated
// error list without aborting it.
func (c *Compiler) errorf(pos token.Pos, format string, args ...any) {
	c.errs.Add(gotoken.Position{Filename: c.filename, Line: pos.Line(), Column: pos.Col()}, fmt.Sprintf(format, args...))
}

// recoverAndAccumulate classifies err as a single-token diagnostic the
// compiler can record and skip past, continuing to look for further
// diagnostics before the compile is abandoned. It reports whether err
// was recorded this way; a false result means the caller must abort
// immediately instead, since the error reflects a structural grammar
// fault (an unclosed word definition, a misplaced ';' or ':') rather
// than a single bad token.
func (c *Compiler) recoverAndAccumulate(err error) bool {
	switch e := err.(type) {
	case *UnknownWordError:
		c.errorf(e.Pos, "unknown word %q", e.Name)
	case *VariableFormError:
		c.errorf(e.Pos, "%q is not a valid variable-access form", e.Lit)
	case *UnexpectedTokenError:
		c.errorf(e.Pos, "unexpected %s", e.Kind)
	case *MissingInstructionError:
		c.errorf(e.Pos, "%s has no preceding instruction to apply to", e.Name)
	default:
		return false
	}
	return true
}

// New creates a Compiler over source, with macros and pre-existing user
// words (both scoped to this compilation — the engine seeds words with
// whatever ambient words it pre-compiled).
func New(filename, source string, macros map[string]*macro.Def, words map[string]*Program, registry *operation.Registry, loopLimit int) *Compiler {
	if words == nil {
		words = map[string]*Program{}
	}
	return &Compiler{
		tz:        tokenizer.New(filename, source, macros, loopLimit),
		registry:  registry,
		words:     words,
		filename:  filename,
		loopLimit: loopLimit,
	}
}

// Compile parses and resolves the whole input and returns the frozen
// top-level Program.
func (c *Compiler) Compile() (*Program, error) {
	for {
		tok, err := c.peekToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind != token.BeginDef {
			break
		}
		if err := c.compileWordDef(); err != nil {
			return nil, err
		}
	}

	tok, err := c.peekToken()
	if err != nil {
		return nil, err
	}
	if tok.Kind == token.EndDef {
		// An isolated leading ';' with no word definition open is a
		// tolerated no-op separator between the word-def prologue and the
		// main body.
		if _, err := c.nextToken(); err != nil {
			return nil, err
		}
	}

	refs, err := c.compileWords()
	if err != nil {
		return nil, err
	}

	if len(c.errs) > 0 {
		return nil, c.errs.Err()
	}

	prog := &Program{Filename: c.filename, Refs: refs}
	prog.Freeze()
	return prog, nil
}

// Words returns the user words compiled so far, keyed by upper-cased name.
// The engine uses this to seed a later compilation's word table with an
// earlier one's definitions, the ambient/compiled-once words.
func (c *Compiler) Words() map[string]*Program { return c.words }

func (c *Compiler) compileWordDef() error {
	if _, err := c.nextToken(); err != nil { // consume ':'
		return err
	}
	nameTok, err := c.nextToken()
	if err != nil {
		return err
	}
	if nameTok.Kind != token.OtherName {
		return &MissingWordNameError{Pos: nameTok.Pos}
	}
	name := strings.ToUpper(nameTok.Name)
	if chain := c.registry.Lookup(name); chain != nil {
		return &RegisteredWordNameError{Pos: nameTok.Pos, Name: name}
	}

	refs, err := c.compileWordBody()
	if err != nil {
		return err
	}

	prog := &Program{Filename: c.filename, Name: name, Refs: refs}
	prog.Freeze()
	c.words[name] = prog
	return nil
}

// compileWordBody reads references until the closing ';' of an inline word
// definition, which it consumes.
func (c *Compiler) compileWordBody() ([]*operation.Reference, error) {
	c.BeginSequence()
	defer c.EndSequence()
	for {
		tok, err := c.peekToken()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case token.EndDef:
			_, err := c.nextToken()
			return c.currentFrame(), err
		case token.EOF:
			return nil, &UnterminatedWordDefError{Pos: tok.Pos}
		case token.BeginDef:
			return nil, &MisplacedBeginDefError{Pos: tok.Pos}
		}
		if _, err := c.NextReference(); err != nil {
			if c.recoverAndAccumulate(err) {
				continue
			}
			return nil, err
		}
	}
}

// compileWords reads the main body's references until EOF.
func (c *Compiler) compileWords() ([]*operation.Reference, error) {
	c.BeginSequence()
	defer c.EndSequence()
	for {
		tok, err := c.peekToken()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case token.EOF:
			return c.currentFrame(), nil
		case token.EndDef:
			return nil, &MisplacedEndWordError{Pos: tok.Pos}
		case token.BeginDef:
			return nil, &MisplacedBeginDefError{Pos: tok.Pos}
		}
		if _, err := c.NextReference(); err != nil {
			if c.recoverAndAccumulate(err) {
				continue
			}
			return nil, err
		}
	}
}

// peekToken/nextToken are the sole gateway to the tokenizer, buffering at
// most one token of lookahead so the grammar above can distinguish an
// ordinary word from EOF/';'/':' before committing to build a reference.
func (c *Compiler) peekToken() (token.Token, error) {
	if c.tokBuf == nil {
		tok, err := c.tz.Next()
		if err != nil {
			return token.Token{}, err
		}
		c.tokBuf = &tok
	}
	return *c.tokBuf, nil
}

func (c *Compiler) nextToken() (token.Token, error) {
	tok, err := c.peekToken()
	if err != nil {
		return token.Token{}, err
	}
	c.tokBuf = nil
	return tok, nil
}

// BeginSequence, EndSequence, appendBuilding, currentFrame, and
// PreviousReference implement the reference-sequence bracketing half of
// operation.SetUpContext; PeekReference and NextReference implement the
// rest.

func (c *Compiler) BeginSequence() {
	c.building = append(c.building, nil)
}

func (c *Compiler) EndSequence() {
	c.building = c.building[:len(c.building)-1]
}

func (c *Compiler) appendBuilding(ref *operation.Reference) {
	n := len(c.building) - 1
	c.building[n] = append(c.building[n], ref)
}

func (c *Compiler) currentFrame() []*operation.Reference {
	return c.building[len(c.building)-1]
}

func (c *Compiler) PreviousReference() (*operation.Reference, error) {
	if len(c.building) == 0 {
		return nil, &MissingInstructionError{Pos: c.curPos, Name: c.curName}
	}
	n := len(c.building) - 1
	frame := c.building[n]
	if len(frame) == 0 {
		return nil, &MissingInstructionError{Pos: c.curPos, Name: c.curName}
	}
	ref := frame[len(frame)-1]
	c.building[n] = frame[:len(frame)-1]
	return ref, nil
}

// PeekReference and NextReference implement operation.SetUpContext.

func (c *Compiler) PeekReference() (*operation.Reference, error) {
	if !c.havePeekRef {
		ref, err := c.buildNextReference()
		c.peekRef, c.peekRefErr, c.havePeekRef = ref, err, true
	}
	return c.peekRef, c.peekRefErr
}

func (c *Compiler) NextReference() (*operation.Reference, error) {
	if c.havePeekRef {
		c.havePeekRef = false
		return c.peekRef, c.peekRefErr
	}
	return c.buildNextReference()
}

// buildNextReference builds the single next reference and appends it to the
// current sequence frame — once, here, regardless of whether the caller
// reached it via PeekReference or NextReference, so a later PreviousReference
// call sees it exactly once no matter which path produced it.
func (c *Compiler) buildNextReference() (*operation.Reference, error) {
	tok, err := c.nextToken()
	if err != nil {
		return nil, err
	}
	ref, err := c.buildReference(tok)
	if err != nil {
		return nil, err
	}
	c.appendBuilding(ref)
	return ref, nil
}

func (c *Compiler) buildReference(tok token.Token) (*operation.Reference, error) {
	switch tok.Kind {
	case token.NumericConstant:
		var v value.Value
		if tok.IsFloat {
			v = value.Double(tok.Double)
		} else {
			v = value.Long(tok.Long)
		}
		return operation.Single(operation.ConstantOp, v, tok.Pos), nil

	case token.TextConstant:
		return operation.Single(operation.ConstantOp, value.Text(tok.Text), tok.Pos), nil

	case token.VariableAction:
		if err := c.validateVar(tok); err != nil {
			return nil, err
		}
		return operation.Single(operation.VarAccessOp(tok.Var), nil, tok.Pos), nil

	case token.OtherName:
		return c.buildNamedReference(tok)

	default:
		return nil, &UnexpectedTokenError{Pos: tok.Pos, Kind: tok.Kind}
	}
}

// validateVar enforces the (kind, action, dup) shape a variable-access
// token must have to be meaningful: an out-of-range index (beyond the
// configured loop limit), a dup prefix on anything but a store (only
// ":$1=" makes sense — duplicating a value that is never popped), and a
// store into the read-only param bank ("@1=") are each a VariableFormError
// rather than a silently-accepted-but-nonsensical access.
func (c *Compiler) validateVar(tok token.Token) error {
	v := tok.Var
	switch {
	case c.loopLimit > 0 && v.Index > c.loopLimit:
		return &VariableFormError{Pos: tok.Pos, Lit: tok.Lexeme}
	case v.Dup && v.Action != token.ActStore:
		return &VariableFormError{Pos: tok.Pos, Lit: tok.Lexeme}
	case v.Action == token.ActStore && v.Kind == token.Param:
		return &VariableFormError{Pos: tok.Pos, Lit: tok.Lexeme}
	}
	return nil
}

// buildNamedReference resolves an OtherName token against the built-in
// registry first, then the user-word table, per the dispatch
// order. A registered name's chain is bound once, here, at compile time;
// which registration in the chain actually fires is a runtime decision
// (filter evaluation against the live stack — see operation.Reference.Execute),
// since filters need the stack shape that only exists at execution time.
func (c *Compiler) buildNamedReference(tok token.Token) (*operation.Reference, error) {
	name := strings.ToUpper(tok.Name)

	if chain := c.registry.Lookup(name); chain != nil {
		ref := &operation.Reference{Chain: chain, Pos: tok.Pos}
		c.curPos, c.curName = tok.Pos, name
		newOperand, err := chain[0].Op.SetUp(c, ref.Operand)
		if err != nil {
			return nil, err
		}
		ref.Operand = newOperand
		return ref, nil
	}

	if prog, ok := c.words[name]; ok {
		return operation.Single(operation.CallOp, prog, tok.Pos), nil
	}

	return nil, &UnknownWordError{Pos: tok.Pos, Name: tok.Name}
}
