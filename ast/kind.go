package ast

import "fmt"

// Kind is the syntactic discriminant carried by every node.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindProgram

	// statements
	KindVarDecl
	KindDeclarator
	KindFuncDecl
	KindReturnStmt
	KindExprStmt
	KindBlockStmt
	KindIfStmt
	KindWhileStmt
	KindThrowStmt
	KindEmptyStmt
	KindClassDecl
	KindModuleDecl
	KindImportDecl
	KindExportDecl

	// expressions
	KindIdentifier
	KindNumberLit
	KindStringLit
	KindBoolLit
	KindNullLit
	KindThisExpr
	KindArrayExpr
	KindObjectExpr
	KindProperty
	KindFuncExpr
	KindArrowFunc
	KindCallExpr
	KindNewExpr
	KindMemberExpr
	KindAssignExpr
	KindBinaryExpr
	KindUnaryExpr
	KindUpdateExpr
	KindCondExpr

	// patterns
	KindObjectPattern
	KindPatternProp
	KindArrayPattern
	KindRestElement

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:       "Invalid",
	KindProgram:       "Program",
	KindVarDecl:       "VariableDeclaration",
	KindDeclarator:    "VariableDeclarator",
	KindFuncDecl:      "FunctionDeclaration",
	KindReturnStmt:    "ReturnStatement",
	KindExprStmt:      "ExpressionStatement",
	KindBlockStmt:     "BlockStatement",
	KindIfStmt:        "IfStatement",
	KindWhileStmt:     "WhileStatement",
	KindThrowStmt:     "ThrowStatement",
	KindEmptyStmt:     "EmptyStatement",
	KindClassDecl:     "ClassDeclaration",
	KindModuleDecl:    "ModuleDeclaration",
	KindImportDecl:    "ImportDeclaration",
	KindExportDecl:    "ExportDeclaration",
	KindIdentifier:    "Identifier",
	KindNumberLit:     "NumericLiteral",
	KindStringLit:     "StringLiteral",
	KindBoolLit:       "BooleanLiteral",
	KindNullLit:       "NullLiteral",
	KindThisExpr:      "ThisExpression",
	KindArrayExpr:     "ArrayExpression",
	KindObjectExpr:    "ObjectExpression",
	KindProperty:      "Property",
	KindFuncExpr:      "FunctionExpression",
	KindArrowFunc:     "ArrowFunctionExpression",
	KindCallExpr:      "CallExpression",
	KindNewExpr:       "NewExpression",
	KindMemberExpr:    "MemberExpression",
	KindAssignExpr:    "AssignmentExpression",
	KindBinaryExpr:    "BinaryExpression",
	KindUnaryExpr:     "UnaryExpression",
	KindUpdateExpr:    "UpdateExpression",
	KindCondExpr:      "ConditionalExpression",
	KindObjectPattern: "ObjectPattern",
	KindPatternProp:   "PatternProperty",
	KindArrayPattern:  "ArrayPattern",
	KindRestElement:   "RestElement",
}

func (k Kind) String() string {
	if k < kindCount && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Kinds returns every valid node kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindProgram; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}
