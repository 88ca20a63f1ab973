package interpreter

import (
	"errors"
	"fmt"
	"io"

	"cellar/pkg/bytecode"
	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

// typedExec binds the execution routine of family f to descriptor d. The
// descriptor is resolved here, once, so no instruction dispatches on type.
func typedExec(f bytecode.Family, d *types.Descriptor) func(*Interpreter) error {
	switch f {
	case bytecode.FamConst:
		return func(i *Interpreter) error {
			v, err := i.literalOperand()
			if err != nil {
				return err
			}
			return i.push(d.Convert(v))
		}

	case bytecode.FamEval:
		return func(i *Interpreter) error {
			sym, err := i.symbolOperand()
			if err != nil {
				return err
			}
			v, err := valueOf(sym)
			if err != nil {
				return err
			}
			return i.push(d.Convert(v))
		}

	case bytecode.FamAssign:
		return func(i *Interpreter) error {
			sym, err := i.symbolOperand()
			if err != nil {
				return err
			}
			top, err := i.peek(0)
			if err != nil {
				return err
			}
			*top = d.Convert(*top)
			return store(sym, d, *top)
		}

	case bytecode.FamArgEval:
		return func(i *Interpreter) error {
			n, err := i.countOperand()
			if err != nil {
				return err
			}
			idx, err := i.argIndex(n)
			if err != nil {
				return err
			}
			return i.push(d.Convert(i.stack[idx]))
		}

	case bytecode.FamArgAssign:
		return func(i *Interpreter) error {
			n, err := i.countOperand()
			if err != nil {
				return err
			}
			idx, err := i.argIndex(n)
			if err != nil {
				return err
			}
			top, err := i.peek(0)
			if err != nil {
				return err
			}
			*top = d.Convert(*top)
			i.stack[idx] = *top
			return nil
		}

	case bytecode.FamLocalEval:
		return func(i *Interpreter) error {
			n, err := i.countOperand()
			if err != nil {
				return err
			}
			slot, err := i.localSlot(n)
			if err != nil {
				return err
			}
			return i.push(d.Convert(*slot))
		}

	case bytecode.FamLocalAssign:
		return func(i *Interpreter) error {
			n, err := i.countOperand()
			if err != nil {
				return err
			}
			slot, err := i.localSlot(n)
			if err != nil {
				return err
			}
			top, err := i.peek(0)
			if err != nil {
				return err
			}
			*top = d.Convert(*top)
			*slot = *top
			return nil
		}

	case bytecode.FamAdd, bytecode.FamSub, bytecode.FamMul, bytecode.FamDiv, bytecode.FamMod, bytecode.FamPow:
		fn, ok := d.Binary(f)
		if !ok {
			return nil
		}
		return func(i *Interpreter) error {
			b, err := i.pop()
			if err != nil {
				return err
			}
			a, err := i.pop()
			if err != nil {
				return err
			}
			r, err := fn(d.Convert(a), d.Convert(b))
			if err != nil {
				return err
			}
			return i.push(r)
		}

	case bytecode.FamNeg:
		neg, ok := d.Negate()
		if !ok {
			return nil
		}
		return func(i *Interpreter) error {
			top, err := i.peek(0)
			if err != nil {
				return err
			}
			*top = neg(d.Convert(*top))
			return nil
		}

	case bytecode.FamLt, bytecode.FamLe, bytecode.FamGt, bytecode.FamGe, bytecode.FamEq, bytecode.FamNe:
		pred, ok := d.Compare(f)
		if !ok {
			return nil
		}
		return func(i *Interpreter) error {
			b, err := i.pop()
			if err != nil {
				return err
			}
			a, err := i.pop()
			if err != nil {
				return err
			}
			return i.push(types.NewBool(pred(d.Convert(a), d.Convert(b))))
		}

	case bytecode.FamPreInc, bytecode.FamPreDec, bytecode.FamPostInc, bytecode.FamPostDec:
		one, ok := d.One()
		if !ok {
			return nil
		}
		step := bytecode.FamAdd
		if f == bytecode.FamPreDec || f == bytecode.FamPostDec {
			step = bytecode.FamSub
		}
		fn, ok := d.Binary(step)
		if !ok {
			return nil
		}
		post := f == bytecode.FamPostInc || f == bytecode.FamPostDec
		return func(i *Interpreter) error {
			sym, err := i.symbolOperand()
			if err != nil {
				return err
			}
			old, err := valueOf(sym)
			if err != nil {
				return err
			}
			old = d.Convert(old)
			r, err := fn(old, one)
			if err != nil {
				return err
			}
			if err := store(sym, d, r); err != nil {
				return err
			}
			if post {
				return i.push(old)
			}
			return i.push(r)
		}

	case bytecode.FamCvt:
		return func(i *Interpreter) error {
			top, err := i.peek(0)
			if err != nil {
				return err
			}
			*top = d.Convert(*top)
			return nil
		}

	case bytecode.FamCvtUnder:
		return func(i *Interpreter) error {
			under, err := i.peek(1)
			if err != nil {
				return err
			}
			*under = d.Convert(*under)
			return nil
		}

	case bytecode.FamPrExpr, bytecode.FamPrVal:
		newline := f == bytecode.FamPrExpr
		return func(i *Interpreter) error {
			v, err := i.pop()
			if err != nil {
				return err
			}
			text := d.Format(v)
			if newline {
				text += "\n"
			}
			_, err = io.WriteString(i.out, text)
			return err
		}

	case bytecode.FamRead:
		return func(i *Interpreter) error {
			sym, err := i.symbolOperand()
			if err != nil {
				return err
			}
			tok, err := i.readToken()
			if errors.Is(err, io.EOF) {
				return i.push(types.NewInt(0))
			}
			if err != nil {
				return err
			}
			v, err := d.Parse(tok)
			if err != nil {
				return fmt.Errorf("%w: %q is not a %s", ErrMalformedInput, tok, d)
			}
			if err := store(sym, d, d.Convert(v)); err != nil {
				return err
			}
			return i.push(types.NewInt(1))
		}

	default:
		return nil
	}
}

// valueOf reads a global variable or constant
func valueOf(sym *symbol.Symbol) (types.Value, error) {
	switch sym.Kind {
	case symbol.GlobalVar, symbol.Const:
		return sym.Value, nil
	case symbol.Undefined:
		return types.Value{}, fmt.Errorf("%w: %s", ErrUndefinedVariable, sym.Name)
	default:
		return types.Value{}, fmt.Errorf("%w: %s", ErrNotVariable, sym)
	}
}

// store writes a global variable, defining it on first assignment
func store(sym *symbol.Symbol, d *types.Descriptor, v types.Value) error {
	switch sym.Kind {
	case symbol.GlobalVar, symbol.Undefined:
	default:
		return fmt.Errorf("%w: %s", ErrNotVariable, sym)
	}
	sym.Kind = symbol.GlobalVar
	sym.Value = v
	if sym.Type == nil {
		sym.Type = d
	}
	return nil
}
