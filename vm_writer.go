package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

type VMSegmentType string

const (
	InvalidVMSegmentType VMSegmentType = ""
	ConstVMSegment       VMSegmentType = "constant"
	ArgumentVMSegment    VMSegmentType = "argument"
	LocalVMSegment       VMSegmentType = "local"
	StaticVMSegment      VMSegmentType = "static"
	ThisVMSegment        VMSegmentType = "this"
	ThatVMSegment        VMSegmentType = "that"
	PointerVMSegment     VMSegmentType = "pointer"
	TempVMSegment        VMSegmentType = "temp"
)

type VMOperation string

const (
	InvalidVMOperation VMOperation = ""
	AddVMOperation     VMOperation = "add"
	SubVMOperation     VMOperation = "sub"
	NegVMOperation     VMOperation = "neg"
	EqVMOperation      VMOperation = "eq"
	GtVMOperation      VMOperation = "gt"
	LtVMOperation      VMOperation = "lt"
	AndVMOperation     VMOperation = "and"
	OrVMOperation      VMOperation = "or"
	NotVMOperation     VMOperation = "not"
)

// Emitter receives VM commands in program order.
type Emitter interface {
	WritePush(segment VMSegmentType, index int)
	WritePop(segment VMSegmentType, index int)
	WriteArithmetic(operation VMOperation)
	WriteLabel(label string)
	WriteGoto(label string)
	WriteIf(label string)
	WriteCall(name string, nArgs int)
	WriteFunction(name string, nLocals int)
	WriteReturn()
}

// VMWriter serializes commands one per line. The first write error is kept
// and returned by Flush; later writes are dropped.
type VMWriter struct {
	output *bufio.Writer
	err    error
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{output: bufio.NewWriter(w)}
}

func (w *VMWriter) WriteCommand(command string) {
	if w.err != nil {
		return
	}
	if _, err := w.output.WriteString(command); err != nil {
		w.err = err
		return
	}
	w.err = w.output.WriteByte('\n')
}

func (w *VMWriter) WritePush(segment VMSegmentType, index int) {
	w.WriteCommand(fmt.Sprintf("push %s %d", segment, index))
}

func (w *VMWriter) WritePop(segment VMSegmentType, index int) {
	w.WriteCommand(fmt.Sprintf("pop %s %d", segment, index))
}

func (w *VMWriter) WriteArithmetic(operation VMOperation) {
	w.WriteCommand(string(operation))
}

func (w *VMWriter) WriteLabel(label string) {
	w.WriteCommand("label " + label)
}

func (w *VMWriter) WriteGoto(label string) {
	w.WriteCommand("goto " + label)
}

func (w *VMWriter) WriteIf(label string) {
	w.WriteCommand("if-goto " + label)
}

func (w *VMWriter) WriteCall(name string, nArgs int) {
	w.WriteCommand("call " + name + " " + strconv.Itoa(nArgs))
}

func (w *VMWriter) WriteFunction(name string, nLocals int) {
	w.WriteCommand("function " + name + " " + strconv.Itoa(nLocals))
}

func (w *VMWriter) WriteReturn() {
	w.WriteCommand("return")
}

func (w *VMWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.output.Flush()
	return w.err
}
