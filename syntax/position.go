package syntax

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Children returns the direct child nodes of any node, in source order.
// Nil-valued optional children are omitted.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		switch v := c.(type) {
		case nil:
			return
		case *Identifier:
			if v == nil {
				return
			}
		case *TypeAnnotation:
			if v == nil {
				return
			}
		case *Annotation:
			if v == nil {
				return
			}
		case *FunctionBlock:
			if v == nil {
				return
			}
		case *Literal:
			if v == nil {
				return
			}
		case Expression:
			if v == nil {
				return
			}
		case FunctionStatement:
			if v == nil {
				return
			}
		}
		out = append(out, c)
	}

	switch v := n.(type) {
	case *Script:
		for _, s := range v.Statements {
			add(s)
		}
	case *ClassDecl:
		for i := range v.Specifiers {
			add(&v.Specifiers[i])
		}
		add(&v.Name)
		add(v.Base)
		for _, s := range v.Definition {
			add(s)
		}
	case *StateDecl:
		for i := range v.Specifiers {
			add(&v.Specifiers[i])
		}
		add(&v.Name)
		add(&v.Parent)
		add(v.Base)
		for _, s := range v.Definition {
			add(s)
		}
	case *StructDecl:
		for i := range v.Specifiers {
			add(&v.Specifiers[i])
		}
		add(&v.Name)
		for _, s := range v.Definition {
			add(s)
		}
	case *EnumDecl:
		add(&v.Name)
		for _, variant := range v.Variants {
			add(variant)
		}
	case *EnumVariantDecl:
		add(&v.Name)
		add(v.Value)
	case *FunctionDecl:
		add(v.Annotation)
		for i := range v.Specifiers {
			add(&v.Specifiers[i])
		}
		add(v.Flavour)
		add(&v.Name)
		for _, p := range v.Params {
			add(p)
		}
		add(v.ReturnType)
		add(v.Definition)
	case *EventDecl:
		add(&v.Name)
		for _, p := range v.Params {
			add(p)
		}
		add(v.Definition)
	case *ParamGroup:
		for i := range v.Specifiers {
			add(&v.Specifiers[i])
		}
		for i := range v.Names {
			add(&v.Names[i])
		}
		add(&v.Type)
	case *MemberVarDecl:
		add(v.Annotation)
		for i := range v.Specifiers {
			add(&v.Specifiers[i])
		}
		for i := range v.Names {
			add(&v.Names[i])
		}
		add(&v.Type)
	case *AutobindDecl:
		for i := range v.Specifiers {
			add(&v.Specifiers[i])
		}
		add(&v.Name)
		add(&v.Type)
	case *VarDecl:
		for i := range v.Names {
			add(&v.Names[i])
		}
		add(&v.Type)
		add(v.InitValue)
	case *Annotation:
		add(&v.Name)
		add(v.Arg)
	case *TypeAnnotation:
		add(&v.TypeName)
		add(v.TypeArg)
	case *FunctionBlock:
		for _, s := range v.Statements {
			add(s)
		}
	case *ExprStatement:
		add(v.Expr)
	case *ReturnStatement:
		add(v.Value)
	case *DeleteStatement:
		add(v.Value)
	case *CompoundStatement:
		for _, s := range v.Statements {
			add(s)
		}
	case *IfStatement:
		add(v.Cond)
		add(v.Body)
		add(v.ElseBody)
	case *WhileStatement:
		add(v.Cond)
		add(v.Body)
	case *DoWhileStatement:
		add(v.Cond)
		add(v.Body)
	case *ForStatement:
		add(v.Init)
		add(v.Cond)
		add(v.Iter)
		add(v.Body)
	case *SwitchStatement:
		add(v.Cond)
		for _, s := range v.Body {
			add(s)
		}
	case *LiteralExpr:
		add(&v.Literal)
	case *IdentExpr:
		add(&v.Name)
	case *CallExpr:
		add(v.Callee)
		for _, a := range v.Args {
			add(a)
		}
	case *MemberAccessExpr:
		add(v.Accessor)
		add(&v.Member)
	case *ArrayIndexExpr:
		add(v.Accessor)
		add(v.Index)
	case *NewExpr:
		add(&v.Class)
		add(v.LifetimeObj)
	case *CastExpr:
		add(&v.Target)
		add(v.Value)
	case *UnaryOpExpr:
		add(v.Right)
	case *BinaryOpExpr:
		add(v.Left)
		add(v.Right)
	case *AssignExpr:
		add(v.Left)
		add(v.Right)
	case *TernaryExpr:
		add(v.Cond)
		add(v.Conseq)
		add(v.Alt)
	case *ParenExpr:
		add(v.Inner)
	}

	return out
}

// FindPath walks only the subtree whose range spans the target position,
// returning the chain of nodes from the script root down to the innermost
// node containing the position. Returns nil if the position is outside the
// script.
func FindPath(script *Script, pos protocol.Position) []Node {
	if !ContainsPosition(script, pos) {
		return nil
	}

	path := []Node{script}
	current := Node(script)
	for {
		advanced := false
		for _, child := range Children(current) {
			if ContainsPosition(child, pos) {
				path = append(path, child)
				current = child
				advanced = true
				break
			}
		}
		if !advanced {
			return path
		}
	}
}
