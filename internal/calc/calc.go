// Package calc implements the arithmetic operations the service persists.
// All operations are pure functions over float64 operand lists.
package calc

import (
	"errors"
	"math"
)

// Operation identifies one of the supported calculation types.
type Operation string

const (
	Addition       Operation = "addition"
	Subtraction    Operation = "subtraction"
	Multiplication Operation = "multiplication"
	Division       Operation = "division"
	Exponentiation Operation = "exponentiation"
	Modulus        Operation = "modulus"
	Minimum        Operation = "minimum"
	Maximum        Operation = "maximum"
	Average        Operation = "average"
)

var (
	ErrUnknownOperation  = errors.New("unknown operation type")
	ErrNotEnoughOperands = errors.New("at least two operands are required")
	ErrDivisionByZero    = errors.New("cannot divide by zero")
	ErrModulusByZero     = errors.New("cannot perform modulus by zero")
)

// Operations lists every supported operation type.
func Operations() []Operation {
	return []Operation{
		Addition, Subtraction, Multiplication, Division,
		Exponentiation, Modulus, Minimum, Maximum, Average,
	}
}

// Valid reports whether op is a supported operation type.
func (op Operation) Valid() bool {
	switch op {
	case Addition, Subtraction, Multiplication, Division,
		Exponentiation, Modulus, Minimum, Maximum, Average:
		return true
	}
	return false
}

// Compute applies op to operands. Non-commutative operations fold
// left to right across the whole list, e.g. exponentiation of
// [2, 3, 2] is (2^3)^2 = 64.
func Compute(op Operation, operands []float64) (float64, error) {
	if len(operands) < 2 {
		return 0, ErrNotEnoughOperands
	}

	switch op {
	case Addition:
		return fold(operands, func(a, b float64) float64 { return a + b }), nil
	case Subtraction:
		return fold(operands, func(a, b float64) float64 { return a - b }), nil
	case Multiplication:
		return fold(operands, func(a, b float64) float64 { return a * b }), nil
	case Division:
		return divide(operands)
	case Exponentiation:
		return fold(operands, math.Pow), nil
	case Modulus:
		return modulus(operands)
	case Minimum:
		return fold(operands, math.Min), nil
	case Maximum:
		return fold(operands, math.Max), nil
	case Average:
		sum := fold(operands, func(a, b float64) float64 { return a + b })
		return sum / float64(len(operands)), nil
	default:
		return 0, ErrUnknownOperation
	}
}

func fold(operands []float64, f func(a, b float64) float64) float64 {
	acc := operands[0]
	for _, v := range operands[1:] {
		acc = f(acc, v)
	}
	return acc
}

func divide(operands []float64) (float64, error) {
	acc := operands[0]
	for _, v := range operands[1:] {
		if v == 0 {
			return 0, ErrDivisionByZero
		}
		acc /= v
	}
	return acc, nil
}

func modulus(operands []float64) (float64, error) {
	acc := operands[0]
	for _, v := range operands[1:] {
		if v == 0 {
			return 0, ErrModulusByZero
		}
		acc = math.Mod(acc, v)
	}
	return acc, nil
}
