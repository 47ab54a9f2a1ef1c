package ir

import "fmt"

// Instruction is one emitted operation inside a BasicBlock. Every
// instruction that yields a value implements Result; terminators
// (Br/CondBr/Ret) return nil.
type Instruction interface {
	String() string
	Result() *Value
}

// instrBase carries the fields common to every value-producing
// instruction: its own result Value, so callers can thread it straight
// into the next production the way original_source/src/parser.cpp threads
// llvm::Value* return values.
type instrBase struct {
	result *Value
}

func (b *instrBase) Result() *Value { return b.result }

// BinOp covers add/sub/mul/div (signed and float variants) plus the
// bitwise and/or/xor ops, identified by Op's mnemonic.
type BinOp struct {
	instrBase
	Op       string
	LHS, RHS *Value
}

func (i *BinOp) String() string {
	return fmt.Sprintf("%s = %s %s %s, %s", i.result, i.Op, i.result.Typ, i.LHS, i.RHS)
}

// ICmp and FCmp are the signed-integer and ordered-float comparison
// instructions spec §6.3 names.
type ICmp struct {
	instrBase
	Pred     IntPred
	LHS, RHS *Value
}

func (i *ICmp) String() string {
	return fmt.Sprintf("%s = icmp %s %s %s, %s", i.result, i.Pred, i.LHS.Typ, i.LHS, i.RHS)
}

type FCmp struct {
	instrBase
	Pred     FloatPred
	LHS, RHS *Value
}

func (i *FCmp) String() string {
	return fmt.Sprintf("%s = fcmp %s %s %s, %s", i.result, i.Pred, i.LHS.Typ, i.LHS, i.RHS)
}

// Convert covers the four conversions spec §6.3 names: signed int <->
// float, and int <-> bool (the bool->int direction zero-extends, the
// int->bool direction compares against zero).
type Convert struct {
	instrBase
	Op  string // "sitofp" | "fptosi" | "icmpne0" | "zext"
	Val *Value
}

func (i *Convert) String() string {
	return fmt.Sprintf("%s = %s %s %s to %s", i.result, i.Op, i.Val.Typ, i.Val, i.result.Typ)
}

// Neg and FNeg negate an integer or float value at runtime (used for
// unary minus applied to a loaded identifier rather than a literal).
type Neg struct {
	instrBase
	Val *Value
}

func (i *Neg) String() string { return fmt.Sprintf("%s = neg %s %s", i.result, i.result.Typ, i.Val) }

type FNeg struct {
	instrBase
	Val *Value
}

func (i *FNeg) String() string {
	return fmt.Sprintf("%s = fneg %s %s", i.result, i.result.Typ, i.Val)
}

// Alloca reserves stack storage for one value of Elem type, returning a
// pointer to it.
type Alloca struct {
	instrBase
	Elem Type
}

func (i *Alloca) String() string { return fmt.Sprintf("%s = alloca %s", i.result, i.Elem) }

// Load and Store move a value to/from a pointer.
type Load struct {
	instrBase
	Ptr *Value
}

func (i *Load) String() string { return fmt.Sprintf("%s = load %s, %s", i.result, i.result.Typ, i.Ptr) }

type Store struct {
	Val, Ptr *Value
}

func (i *Store) String() string      { return fmt.Sprintf("store %s %s, %s", i.Val.Typ, i.Val, i.Ptr) }
func (i *Store) Result() *Value      { return nil }

// GEP computes the address of one element of an array pointed to by Ptr,
// mirroring the two-index GEP sequence (`[0, idx]`) the original parser
// issues for every array access.
type GEP struct {
	instrBase
	Ptr   *Value
	Index *Value
}

func (i *GEP) String() string { return fmt.Sprintf("%s = gep %s, %s", i.result, i.Ptr, i.Index) }

// Br and CondBr are the unconditional and conditional branch terminators.
type Br struct {
	Target *BasicBlock
}

func (i *Br) String() string { return fmt.Sprintf("br label %%%s", i.Target.Name) }
func (i *Br) Result() *Value { return nil }

type CondBr struct {
	Cond             *Value
	ThenBB, ElseBB   *BasicBlock
}

func (i *CondBr) String() string {
	return fmt.Sprintf("br %s, label %%%s, label %%%s", i.Cond, i.ThenBB.Name, i.ElseBB.Name)
}
func (i *CondBr) Result() *Value { return nil }

// Call invokes a Function with the given arguments, yielding Void or the
// function's declared return type (every user/built-in procedure in this
// language returns void, but the façade does not assume that).
type Call struct {
	instrBase
	Fn   *Function
	Args []*Value
}

func (i *Call) String() string {
	return fmt.Sprintf("call %s %s(%s)", i.Fn.ReturnType, i.Fn.Name, joinValues(i.Args))
}

// RetVoid and Ret are the two return-terminator forms spec §6.3 names.
type RetVoid struct{}

func (i *RetVoid) String() string { return "ret void" }
func (i *RetVoid) Result() *Value { return nil }

type Ret struct {
	Val *Value
}

func (i *Ret) String() string { return fmt.Sprintf("ret %s %s", i.Val.Typ, i.Val) }
func (i *Ret) Result() *Value { return nil }

func joinValues(vs []*Value) string {
	s := ""
	for idx, v := range vs {
		if idx > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s %s", v.Typ, v)
	}
	return s
}
