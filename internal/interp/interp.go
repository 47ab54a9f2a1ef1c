// Package interp implements a minimal tree-walking interpreter over the
// façade's own in-memory IR graph: it follows Br/CondBr edges between
// ir.BasicBlocks and evaluates each instruction against a small runtime
// register/memory model, directly, without lowering to bytecode or
// machine code. It exists to make the `run` subcommand's end-to-end
// scenarios observable — print statements, loop termination, final
// variable values — without a real code-generation backend.
package interp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/cwbudde/dwslang/internal/ir"
)

// Interp executes one *ir.Module. It holds no parser or semantic state —
// everything it needs (types, control flow, call targets) is already
// baked into the IR it walks.
type Interp struct {
	mod *ir.Module
	in  *bufio.Reader
	out *bufio.Writer

	globals map[*ir.Value]any
}

// New creates an interpreter for mod. Built-in GetX procedures read from
// in; PutX procedures write to out.
func New(mod *ir.Module, in io.Reader, out io.Writer) *Interp {
	return &Interp{
		mod:     mod,
		in:      bufio.NewReader(in),
		out:     bufio.NewWriter(out),
		globals: make(map[*ir.Value]any),
	}
}

// Run locates the named entry procedure (normally "main") and executes
// it to completion.
func (ip *Interp) Run(entryProcedure string) error {
	defer ip.out.Flush()
	fn := ip.findFunction(entryProcedure)
	if fn == nil {
		return fmt.Errorf("interp: no function named %q in this module", entryProcedure)
	}
	_, err := ip.call(fn, nil)
	return err
}

func (ip *Interp) findFunction(name string) *ir.Function {
	for _, fn := range ip.mod.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// frame is one function activation's SSA register file: every value an
// instruction produces or a parameter binds, keyed by the *ir.Value the
// façade gave that instruction. A fresh frame is allocated per call, so
// recursive activations never share storage.
type frame struct {
	regs map[*ir.Value]any
}

func newFrame() *frame { return &frame{regs: make(map[*ir.Value]any)} }

func (fr *frame) set(v *ir.Value, val any) {
	if v != nil {
		fr.regs[v] = val
	}
}

// zeroValue returns the zero runtime value for one façade scalar type.
func zeroValue(t ir.Type) any {
	switch t.Kind {
	case ir.I32, ir.I8:
		return int64(0)
	case ir.F32:
		return float64(0)
	case ir.I1:
		return false
	case ir.Pointer:
		return "" // string storage: a pointer-to-bytes cell starts out empty
	default:
		return nil
	}
}

// newStorage allocates the runtime cell backing one Alloca/GlobalVariable:
// an *arrayRef for an array type, or a boxed scalar (*any) for everything
// else. Every scalar address this interpreter passes around is a *any (one
// scalar cell, including one array element) — GEP is the only thing that
// manufactures a *any pointing into an arrayRef's elements rather than a
// fresh one.
func newStorage(t ir.Type) any {
	if t.Kind == ir.ArrayT {
		elems := make([]any, t.Count)
		for i := range elems {
			elems[i] = zeroValue(*t.Elem)
		}
		return &arrayRef{elems: elems}
	}
	box := new(any)
	*box = zeroValue(t)
	return box
}

// arrayRef is the runtime representation of a pointer to a whole fixed-
// size array — the only shape CreateGEP's Ptr operand ever takes.
type arrayRef struct {
	elems []any
}

// globalCell returns the runtime storage backing a ValGlobal value,
// creating it on first use. Keyed by the *ir.Value's own pointer
// identity: the façade hands out exactly one Value per declared global,
// reused at every reference to it.
func (ip *Interp) globalCell(v *ir.Value) any {
	if cell, ok := ip.globals[v]; ok {
		return cell
	}
	cell := newStorage(*v.Typ.Elem)
	ip.globals[v] = cell
	return cell
}

// get resolves one IR operand to its runtime value.
func (ip *Interp) get(fr *frame, v *ir.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ir.ValConstInt:
		return v.ConstInt
	case ir.ValConstFloat:
		return v.ConstFloat
	case ir.ValConstBool:
		return v.ConstBool
	case ir.ValGlobal:
		if data := v.GlobalData(); data != nil {
			return string(bytes.TrimRight(data, "\x00"))
		}
		return ip.globalCell(v)
	default:
		return fr.regs[v]
	}
}

// call invokes fn, which is either a built-in I/O procedure (External
// with no body) or a user procedure/the program entry point (External
// with blocks, per the façade's single linkage kind).
func (ip *Interp) call(fn *ir.Function, args []any) (any, error) {
	if len(fn.Blocks) == 0 {
		return ip.callBuiltin(fn, args)
	}

	fr := newFrame()
	for i, a := range fn.Args {
		fr.set(a, args[i])
	}

	bb := fn.Entry
	for bb != nil {
		next, ret, isReturn, err := ip.execBlock(fr, bb)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", fn.Name, err)
		}
		if isReturn {
			return ret, nil
		}
		bb = next
	}
	return nil, fmt.Errorf("interp: %s fell off the end of its blocks without a terminator", fn.Name)
}

// execBlock runs bb's instructions in order until it reaches a
// terminator, returning the block to jump to next, or the function's
// return value.
func (ip *Interp) execBlock(fr *frame, bb *ir.BasicBlock) (next *ir.BasicBlock, ret any, isReturn bool, err error) {
	for _, instr := range bb.Instructions {
		switch in := instr.(type) {
		case *ir.BinOp:
			v, err := evalBinOp(in.Op, ip.get(fr, in.LHS), ip.get(fr, in.RHS))
			if err != nil {
				return nil, nil, false, err
			}
			fr.set(in.Result(), v)

		case *ir.ICmp:
			fr.set(in.Result(), evalICmp(in.Pred, ip.get(fr, in.LHS), ip.get(fr, in.RHS)))

		case *ir.FCmp:
			fr.set(in.Result(), evalFCmp(in.Pred, ip.get(fr, in.LHS).(float64), ip.get(fr, in.RHS).(float64)))

		case *ir.Convert:
			v, err := evalConvert(in.Op, ip.get(fr, in.Val))
			if err != nil {
				return nil, nil, false, err
			}
			fr.set(in.Result(), v)

		case *ir.Neg:
			fr.set(in.Result(), -ip.get(fr, in.Val).(int64))

		case *ir.FNeg:
			fr.set(in.Result(), -ip.get(fr, in.Val).(float64))

		case *ir.Alloca:
			fr.set(in.Result(), newStorage(in.Elem))

		case *ir.Load:
			box, ok := ip.get(fr, in.Ptr).(*any)
			if !ok {
				return nil, nil, false, fmt.Errorf("load from a non-scalar address")
			}
			fr.set(in.Result(), *box)

		case *ir.Store:
			box, ok := ip.get(fr, in.Ptr).(*any)
			if !ok {
				return nil, nil, false, fmt.Errorf("store to a non-scalar address")
			}
			*box = ip.get(fr, in.Val)

		case *ir.GEP:
			ref, ok := ip.get(fr, in.Ptr).(*arrayRef)
			if !ok {
				return nil, nil, false, fmt.Errorf("gep on a non-array address")
			}
			idx := ip.get(fr, in.Index).(int64)
			if idx < 0 || int(idx) >= len(ref.elems) {
				return nil, nil, false, fmt.Errorf("array index %d out of bounds (length %d)", idx, len(ref.elems))
			}
			fr.set(in.Result(), &ref.elems[idx])

		case *ir.Br:
			return in.Target, nil, false, nil

		case *ir.CondBr:
			if ip.get(fr, in.Cond).(bool) {
				return in.ThenBB, nil, false, nil
			}
			return in.ElseBB, nil, false, nil

		case *ir.Call:
			args := make([]any, len(in.Args))
			for i, a := range in.Args {
				args[i] = ip.get(fr, a)
			}
			res, err := ip.call(in.Fn, args)
			if err != nil {
				return nil, nil, false, err
			}
			fr.set(in.Result(), res)

		case *ir.RetVoid:
			return nil, nil, true, nil

		case *ir.Ret:
			return nil, ip.get(fr, in.Val), true, nil

		default:
			return nil, nil, false, fmt.Errorf("unhandled instruction %T", instr)
		}
	}
	return nil, nil, false, fmt.Errorf("block %q fell off the end without a terminator", bb.Name)
}

func evalBinOp(op string, lhs, rhs any) (any, error) {
	switch op {
	case "add":
		return lhs.(int64) + rhs.(int64), nil
	case "sub":
		return lhs.(int64) - rhs.(int64), nil
	case "mul":
		return lhs.(int64) * rhs.(int64), nil
	case "sdiv":
		if rhs.(int64) == 0 {
			return nil, fmt.Errorf("integer division by zero")
		}
		return lhs.(int64) / rhs.(int64), nil
	case "fadd":
		return lhs.(float64) + rhs.(float64), nil
	case "fsub":
		return lhs.(float64) - rhs.(float64), nil
	case "fmul":
		return lhs.(float64) * rhs.(float64), nil
	case "fdiv":
		return lhs.(float64) / rhs.(float64), nil
	case "and":
		if lb, ok := lhs.(bool); ok {
			return lb && rhs.(bool), nil
		}
		return lhs.(int64) & rhs.(int64), nil
	case "or":
		if lb, ok := lhs.(bool); ok {
			return lb || rhs.(bool), nil
		}
		return lhs.(int64) | rhs.(int64), nil
	case "xor":
		if lb, ok := lhs.(bool); ok {
			return lb != rhs.(bool), nil
		}
		return lhs.(int64) ^ rhs.(int64), nil
	default:
		return nil, fmt.Errorf("unknown binary op %q", op)
	}
}

// evalICmp evaluates an integer-predicate comparison. Operands are
// ordinarily int64 (the façade's I32), but a relational comparison whose
// hint type is bool keeps both operands as Go bool instead of widening
// them to int first (see alignRelational) — so this switches on the
// operands' own runtime type rather than assuming int64 throughout.
func evalICmp(pred ir.IntPred, lhs, rhs any) bool {
	if lb, ok := lhs.(bool); ok {
		rb := rhs.(bool)
		switch pred {
		case ir.ICmpEQ:
			return lb == rb
		case ir.ICmpNE:
			return lb != rb
		case ir.ICmpSLT:
			return !lb && rb
		case ir.ICmpSGT:
			return lb && !rb
		case ir.ICmpSLE:
			return !lb || rb
		case ir.ICmpSGE:
			return lb || !rb
		default:
			return false
		}
	}
	li, ri := lhs.(int64), rhs.(int64)
	switch pred {
	case ir.ICmpEQ:
		return li == ri
	case ir.ICmpNE:
		return li != ri
	case ir.ICmpSLT:
		return li < ri
	case ir.ICmpSGT:
		return li > ri
	case ir.ICmpSLE:
		return li <= ri
	case ir.ICmpSGE:
		return li >= ri
	default:
		return false
	}
}

func evalFCmp(pred ir.FloatPred, lhs, rhs float64) bool {
	switch pred {
	case ir.FCmpOEQ:
		return lhs == rhs
	case ir.FCmpONE:
		return lhs != rhs
	case ir.FCmpOLT:
		return lhs < rhs
	case ir.FCmpOGT:
		return lhs > rhs
	case ir.FCmpOLE:
		return lhs <= rhs
	case ir.FCmpOGE:
		return lhs >= rhs
	default:
		return false
	}
}

func evalConvert(op string, v any) (any, error) {
	switch op {
	case "sitofp":
		return float64(v.(int64)), nil
	case "fptosi":
		return int64(v.(float64)), nil
	case "icmpne0":
		return v.(int64) != 0, nil
	case "zext":
		if v.(bool) {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return nil, fmt.Errorf("unknown conversion %q", op)
	}
}

// callBuiltin implements the ten pre-declared I/O procedures directly
// against the interpreter's own in/out streams. Every one of them takes
// exactly one by-reference argument, so args[0] is always a *any.
func (ip *Interp) callBuiltin(fn *ir.Function, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("interp: built-in %s expects one argument, got %d", fn.Name, len(args))
	}
	box, ok := args[0].(*any)
	if !ok {
		return nil, fmt.Errorf("interp: built-in %s's argument is not an addressable value", fn.Name)
	}

	switch fn.Name {
	case "PUTINTEGER":
		fmt.Fprintf(ip.out, "%d", (*box).(int64))
	case "PUTFLOAT":
		fmt.Fprintf(ip.out, "%g", (*box).(float64))
	case "PUTCHAR":
		fmt.Fprintf(ip.out, "%c", rune((*box).(int64)))
	case "PUTSTRING":
		fmt.Fprint(ip.out, (*box).(string))
	case "PUTBOOL":
		fmt.Fprintf(ip.out, "%t", (*box).(bool))
	case "GETINTEGER":
		tok, err := ip.readToken()
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("GetInteger: %w", err)
		}
		*box = n
	case "GETFLOAT":
		tok, err := ip.readToken()
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("GetFloat: %w", err)
		}
		*box = f
	case "GETCHAR":
		ip.out.Flush()
		r, _, err := ip.in.ReadRune()
		if err != nil {
			return nil, fmt.Errorf("GetChar: %w", err)
		}
		*box = int64(r)
	case "GETSTRING":
		ip.out.Flush()
		line, err := ip.in.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("GetString: %w", err)
		}
		*box = strings.TrimRight(line, "\r\n")
	case "GETBOOL":
		tok, err := ip.readToken()
		if err != nil {
			return nil, err
		}
		*box = strings.EqualFold(tok, "true")
	default:
		return nil, fmt.Errorf("interp: unknown built-in %s", fn.Name)
	}
	return nil, nil
}

// readToken skips leading whitespace and reads a single whitespace-
// delimited token, the same free-format reading GetInteger/GetFloat/
// GetBool expect from stdin.
func (ip *Interp) readToken() (string, error) {
	ip.out.Flush()
	var sb strings.Builder
	for {
		r, _, err := ip.in.ReadRune()
		if err != nil {
			return "", err
		}
		if !unicode.IsSpace(r) {
			sb.WriteRune(r)
			break
		}
	}
	for {
		r, _, err := ip.in.ReadRune()
		if err != nil {
			break
		}
		if unicode.IsSpace(r) {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}
