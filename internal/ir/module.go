package ir

import "fmt"

// Param is one formal parameter of a Function: its IR-level type (already
// resolved from the source parameter's direction and declared type — see
// internal/parser's proc_header handling) and a display name.
type Param struct {
	Name string
	Typ  Type
}

// Function is a module-level function: a name, return type, ordered
// parameters (exposed as Values so the parser can bind them to symbol
// entries, mirroring `for (auto &arg : F->args())` in the original), and
// the basic blocks that make up its body. Blocks is append-only and
// reflects control-reaches-it order, not creation order — CreateBlock
// returns a detached block; AppendBlock adds it here once a predecessor
// actually branches to it, the same "create now, splice in later" idiom
// original_source/src/parser.cpp uses for if/for.
type Function struct {
	Name       string
	ReturnType Type
	Params     []Param
	Args       []*Value // one *Value per Param, ValArg kind
	External   bool

	Blocks []*BasicBlock
	Entry  *BasicBlock
}

// BasicBlock is a straight-line sequence of instructions ending, once
// closed, in exactly one terminator (Br/CondBr/Ret/RetVoid) — invariant
// 6 of spec §8.
type BasicBlock struct {
	Name         string
	Instructions []Instruction
}

func (bb *BasicBlock) append(instr Instruction) {
	bb.Instructions = append(bb.Instructions, instr)
}

// Terminated reports whether this block already ends in a terminator,
// so the parser can avoid emitting unreachable double-terminators.
func (bb *BasicBlock) Terminated() bool {
	if len(bb.Instructions) == 0 {
		return false
	}
	switch bb.Instructions[len(bb.Instructions)-1].(type) {
	case *Br, *CondBr, *Ret, *RetVoid:
		return true
	default:
		return false
	}
}

// Builder is the narrow façade spec §6.3 describes: the parser package
// holds a Builder, never the concrete *Module type, so it "never reasons
// about machine code" beyond this interface's vocabulary.
type Builder interface {
	ConstInt(v int64) *Value
	ConstFloat(v float64) *Value
	ConstBool(v bool) *Value
	ConstChar(v rune) *Value
	ConstString(s string) *Value
	GlobalVariable(name string, t Type) *Value

	CreateFunction(name string, ret Type, params []Param) *Function
	CreateBlock(fn *Function, name string) *BasicBlock
	AppendBlock(fn *Function, bb *BasicBlock)
	SetInsertPoint(fn *Function, bb *BasicBlock)
	SaveInsertPoint() InsertPoint
	RestoreInsertPoint(ip InsertPoint)
	CurrentFunction() *Function

	CreateAdd(lhs, rhs *Value) *Value
	CreateFAdd(lhs, rhs *Value) *Value
	CreateSub(lhs, rhs *Value) *Value
	CreateFSub(lhs, rhs *Value) *Value
	CreateMul(lhs, rhs *Value) *Value
	CreateFMul(lhs, rhs *Value) *Value
	CreateSDiv(lhs, rhs *Value) *Value
	CreateFDiv(lhs, rhs *Value) *Value
	CreateAnd(lhs, rhs *Value) *Value
	CreateOr(lhs, rhs *Value) *Value
	CreateXor(lhs, rhs *Value) *Value
	CreateNeg(v *Value) *Value
	CreateFNeg(v *Value) *Value

	CreateICmp(pred IntPred, lhs, rhs *Value) *Value
	CreateFCmp(pred FloatPred, lhs, rhs *Value) *Value

	CreateSIToFP(v *Value) *Value
	CreateFPToSI(v *Value) *Value
	CreateIntToBool(v *Value) *Value
	CreateBoolToInt(v *Value) *Value

	CreateAlloca(t Type) *Value
	CreateLoad(ptr *Value) *Value
	CreateStore(val, ptr *Value)
	CreateGEP(ptr, index *Value) *Value

	CreateBr(target *BasicBlock)
	CreateCondBr(cond *Value, thenBB, elseBB *BasicBlock)
	CreateCall(fn *Function, args []*Value) *Value
	CreateRetVoid()
	CreateRet(v *Value)
}

// Module is the top-level IR container: every Function and Global created
// during compilation, in creation order.
type Module struct {
	Name      string
	Functions []*Function
	Globals   []*Global

	nextID int

	fn *Function   // current function being emitted into
	bb *BasicBlock // current insertion point

	rawRecords []string // populated by UnmarshalBinary for inspection only
}

// NewModule creates an empty module, the façade's "context creation" +
// "module object" step rolled into one (this implementation has no
// separate context value — see DESIGN.md for why that layer is elided).
func NewModule(name string) *Module {
	return &Module{Name: name}
}

func (m *Module) newName(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%%%s%d", prefix, m.nextID)
}

func (m *Module) value(t Type, prefix string) *Value {
	return &Value{Kind: ValInstr, Typ: t, name: m.newName(prefix)}
}

// ConstInt, ConstFloat, and ConstBool build literal values; they are
// never appended to a block (constants need no instruction).
func (m *Module) ConstInt(v int64) *Value {
	return &Value{Kind: ValConstInt, Typ: TypeI32, ConstInt: v}
}
func (m *Module) ConstFloat(v float64) *Value {
	return &Value{Kind: ValConstFloat, Typ: TypeF32, ConstFloat: v}
}
func (m *Module) ConstBool(v bool) *Value {
	return &Value{Kind: ValConstBool, Typ: TypeI1, ConstBool: v}
}
func (m *Module) ConstChar(v rune) *Value {
	return &Value{Kind: ValConstInt, Typ: TypeI8, ConstInt: int64(v)}
}

// ConstString creates a backing global for a string literal and returns a
// pointer value to it, mirroring the original's anonymous
// ConstantDataArray-backed GlobalVariable for string factors.
func (m *Module) ConstString(s string) *Value {
	t := ArrayOf(TypeI8, len(s)+1)
	data := append([]byte(s), 0)
	g := &Global{Name: m.newName("str"), Typ: t, Data: data, Alignment: 1}
	m.Globals = append(m.Globals, g)
	return &Value{Kind: ValGlobal, Typ: PointerTo(t), name: g.Name, global: g}
}

// GlobalVariable declares a module-level storage location, zero-
// initialized and 16-byte aligned, matching
// original_source/src/parser.cpp's GlobalVariable construction for
// `global`-prefixed declarations.
func (m *Module) GlobalVariable(name string, t Type) *Value {
	g := &Global{Name: name, Typ: t, Alignment: 16}
	m.Globals = append(m.Globals, g)
	return &Value{Kind: ValGlobal, Typ: PointerTo(t), name: name, global: g}
}

// CreateFunction declares a function with the given signature and
// external linkage (the only linkage this façade supports, per spec
// §6.3), appends it to the module, and returns it undefined (no blocks
// yet — the caller creates and sets an entry block separately).
func (m *Module) CreateFunction(name string, ret Type, params []Param) *Function {
	fn := &Function{Name: name, ReturnType: ret, Params: params, External: true}
	for _, p := range params {
		fn.Args = append(fn.Args, &Value{Kind: ValArg, Typ: p.Typ, name: "%" + p.Name})
	}
	m.Functions = append(m.Functions, fn)
	return fn
}

// CreateBlock allocates a new, detached basic block named name. It is not
// appended to fn.Blocks until AppendBlock is called — this is the
// "create now, splice later" idiom the original LLVM-IRBuilder code uses
// for if/for so that forward branches can reference a block before its
// contents exist.
func (m *Module) CreateBlock(fn *Function, name string) *BasicBlock {
	return &BasicBlock{Name: fmt.Sprintf("%s.%d", name, m.nextBlockID(fn))}
}

func (m *Module) nextBlockID(fn *Function) int { return len(fn.Blocks) + 1 }

// AppendBlock appends bb to fn's block list, matching
// `TheFunction->getBasicBlockList().push_back(bb)` in the original.
func (m *Module) AppendBlock(fn *Function, bb *BasicBlock) {
	fn.Blocks = append(fn.Blocks, bb)
	if fn.Entry == nil {
		fn.Entry = bb
	}
}

// InsertPoint is an opaque snapshot of "which function, which block" the
// builder is currently positioned at, saved/restored across a procedure
// boundary exactly as symtable_manager->save_insert_point/
// get_insert_point do around Builder.saveIP()/restoreIP() in the
// original.
type InsertPoint struct {
	fn *Function
	bb *BasicBlock
}

// SetInsertPoint repositions the builder's cursor to the end of bb within
// fn.
func (m *Module) SetInsertPoint(fn *Function, bb *BasicBlock) {
	m.fn, m.bb = fn, bb
}

// SaveInsertPoint and RestoreInsertPoint snapshot/restore the cursor.
func (m *Module) SaveInsertPoint() InsertPoint { return InsertPoint{m.fn, m.bb} }
func (m *Module) RestoreInsertPoint(ip InsertPoint) {
	m.fn, m.bb = ip.fn, ip.bb
}

// CurrentFunction exposes the function the builder is positioned inside,
// for callers that need it without threading it separately (e.g. if/for
// emission needing TheFunction for new block creation).
func (m *Module) CurrentFunction() *Function { return m.fn }

func (m *Module) emit(instr Instruction) {
	m.bb.append(instr)
}

// --- Arithmetic -------------------------------------------------------

func (m *Module) CreateAdd(lhs, rhs *Value) *Value  { return m.binOp("add", TypeI32, lhs, rhs) }
func (m *Module) CreateFAdd(lhs, rhs *Value) *Value { return m.binOp("fadd", TypeF32, lhs, rhs) }
func (m *Module) CreateSub(lhs, rhs *Value) *Value  { return m.binOp("sub", TypeI32, lhs, rhs) }
func (m *Module) CreateFSub(lhs, rhs *Value) *Value { return m.binOp("fsub", TypeF32, lhs, rhs) }
func (m *Module) CreateMul(lhs, rhs *Value) *Value  { return m.binOp("mul", TypeI32, lhs, rhs) }
func (m *Module) CreateFMul(lhs, rhs *Value) *Value { return m.binOp("fmul", TypeF32, lhs, rhs) }
func (m *Module) CreateSDiv(lhs, rhs *Value) *Value { return m.binOp("sdiv", TypeI32, lhs, rhs) }
func (m *Module) CreateFDiv(lhs, rhs *Value) *Value { return m.binOp("fdiv", TypeF32, lhs, rhs) }
func (m *Module) CreateAnd(lhs, rhs *Value) *Value  { return m.binOp("and", lhs.Typ, lhs, rhs) }
func (m *Module) CreateOr(lhs, rhs *Value) *Value   { return m.binOp("or", lhs.Typ, lhs, rhs) }
func (m *Module) CreateXor(lhs, rhs *Value) *Value  { return m.binOp("xor", lhs.Typ, lhs, rhs) }

func (m *Module) binOp(op string, t Type, lhs, rhs *Value) *Value {
	res := m.value(t, op)
	i := &BinOp{Op: op, LHS: lhs, RHS: rhs}
	i.result = res
	m.emit(i)
	return res
}

func (m *Module) CreateNeg(v *Value) *Value {
	res := m.value(TypeI32, "neg")
	i := &Neg{Val: v}
	i.result = res
	m.emit(i)
	return res
}

func (m *Module) CreateFNeg(v *Value) *Value {
	res := m.value(TypeF32, "fneg")
	i := &FNeg{Val: v}
	i.result = res
	m.emit(i)
	return res
}

// --- Comparisons --------------------------------------------------------

func (m *Module) CreateICmp(pred IntPred, lhs, rhs *Value) *Value {
	res := m.value(TypeI1, "icmp")
	i := &ICmp{Pred: pred, LHS: lhs, RHS: rhs}
	i.result = res
	m.emit(i)
	return res
}

func (m *Module) CreateFCmp(pred FloatPred, lhs, rhs *Value) *Value {
	res := m.value(TypeI1, "fcmp")
	i := &FCmp{Pred: pred, LHS: lhs, RHS: rhs}
	i.result = res
	m.emit(i)
	return res
}

// --- Conversions ---------------------------------------------------------

func (m *Module) CreateSIToFP(v *Value) *Value    { return m.convert("sitofp", TypeF32, v) }
func (m *Module) CreateFPToSI(v *Value) *Value    { return m.convert("fptosi", TypeI32, v) }
func (m *Module) CreateIntToBool(v *Value) *Value { return m.convert("icmpne0", TypeI1, v) }
func (m *Module) CreateBoolToInt(v *Value) *Value { return m.convert("zext", TypeI32, v) }

func (m *Module) convert(op string, t Type, v *Value) *Value {
	res := m.value(t, op)
	i := &Convert{Op: op, Val: v}
	i.result = res
	m.emit(i)
	return res
}

// --- Memory ---------------------------------------------------------------

func (m *Module) CreateAlloca(t Type) *Value {
	res := m.value(PointerTo(t), "ptr")
	i := &Alloca{Elem: t}
	i.result = res
	m.emit(i)
	return res
}

func (m *Module) CreateLoad(ptr *Value) *Value {
	elemT := *ptr.Typ.Elem
	res := m.value(elemT, "v")
	i := &Load{Ptr: ptr}
	i.result = res
	m.emit(i)
	return res
}

func (m *Module) CreateStore(val, ptr *Value) {
	m.emit(&Store{Val: val, Ptr: ptr})
}

// CreateGEP computes the address of ptr[index] for an array pointer,
// mirroring the original's two-index `{0, idx}` GEP sequence collapsed
// to a single logical index here since this façade has no concept of
// the outer "pointer to the whole array" indirection LLVM's GEP exposes.
func (m *Module) CreateGEP(ptr, index *Value) *Value {
	elemT := *ptr.Typ.Elem.Elem
	res := m.value(PointerTo(elemT), "gep")
	i := &GEP{Ptr: ptr, Index: index}
	i.result = res
	m.emit(i)
	return res
}

// --- Control flow ----------------------------------------------------------

func (m *Module) CreateBr(target *BasicBlock) {
	m.emit(&Br{Target: target})
}

func (m *Module) CreateCondBr(cond *Value, thenBB, elseBB *BasicBlock) {
	m.emit(&CondBr{Cond: cond, ThenBB: thenBB, ElseBB: elseBB})
}

func (m *Module) CreateCall(fn *Function, args []*Value) *Value {
	var res *Value
	i := &Call{Fn: fn, Args: args}
	if fn.ReturnType.Kind != Void {
		res = m.value(fn.ReturnType, "call")
		i.result = res
	}
	m.emit(i)
	return res
}

func (m *Module) CreateRetVoid() { m.emit(&RetVoid{}) }
func (m *Module) CreateRet(v *Value) { m.emit(&Ret{Val: v}) }

var _ Builder = (*Module)(nil)
