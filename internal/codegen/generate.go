package codegen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/ormcore/schema"
)

// Generate builds the Go source for relation's static accessor file: a row
// struct, its Field/SetField method pair, and a <Name>Relation() function
// rebuilding the relation's name, id, columns (id, name and kind), primary
// key and secondary keys; column nullability, defaults and annotations, and
// the relation's queries, are not reproduced. schemaPkg is the import
// path of the schema package the emitted code binds against (normally
// "github.com/syssam/ormcore/schema").
//
// Generate refuses a relation with a nested (composite) column — the
// reflection-based recordcodec path handles those, but flattening them into
// a static struct is future work with no concrete caller yet.
func Generate(pkgName string, rel *schema.Relation, schemaPkg string) (*jen.File, error) {
	if err := rel.Validate(); err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}
	for _, c := range rel.Columns {
		if c.IsNested() {
			return nil, fmt.Errorf("codegen: relation %q: nested column %q not supported", rel.Name, c.Name)
		}
	}

	f := jen.NewFile(pkgName)
	f.HeaderComment("Code generated by internal/codegen. DO NOT EDIT.")

	f.Type().Id(rel.Name).StructFunc(func(g *jen.Group) {
		for _, c := range rel.Columns {
			g.Id(goFieldName(c.Name)).Add(goType(c))
		}
	})

	f.Const().DefsFunc(func(g *jen.Group) {
		for _, c := range rel.Columns {
			g.Id(constName(rel.Name, c.Name)).Op("=").Lit(c.Name)
		}
	})

	f.Comment("Field implements querycompiler.Record.")
	f.Func().Params(jen.Id("r").Op("*").Id(rel.Name)).Id("Field").
		Params(jen.Id("name").String()).Any().
		BlockFunc(func(g *jen.Group) {
			g.Switch(jen.Id("name")).BlockFunc(func(cases *jen.Group) {
				for _, c := range rel.Columns {
					field := jen.Id("r").Dot(goFieldName(c.Name))
					body := jen.Return(field)
					if c.Nullable {
						body = jen.If(fieldZeroCheck(c, field)).Block(
							jen.Return(jen.Nil()),
						).Line().Return(field)
					}
					cases.Case(jen.Id(constName(rel.Name, c.Name))).Block(body)
				}
				cases.Default().Block(jen.Return(jen.Nil()))
			})
		})

	f.Comment("SetField implements sqlstore.Record.")
	f.Func().Params(jen.Id("r").Op("*").Id(rel.Name)).Id("SetField").
		Params(jen.Id("name").String(), jen.Id("v").Any()).Error().
		BlockFunc(func(g *jen.Group) {
			g.Switch(jen.Id("name")).BlockFunc(func(cases *jen.Group) {
				for _, c := range rel.Columns {
					cases.Case(jen.Id(constName(rel.Name, c.Name))).BlockFunc(func(b *jen.Group) {
						emitSetField(b, c)
					})
				}
				cases.Default().Block(
					jen.Return(jen.Qual("fmt", "Errorf").Call(
						jen.Lit(rel.Name+": unknown column %q"),
						jen.Id("name"),
					)),
				)
			})
			g.Return(jen.Nil())
		})

	f.Comment(rel.Name + "Relation rebuilds the *schema.Relation this file was generated from.")
	f.Func().Id(rel.Name + "Relation").Params().Op("*").Qual(schemaPkg, "Relation").
		BlockFunc(func(g *jen.Group) {
			g.Id("pk").Op(":=").Qual(schemaPkg, "PrimaryKey").Call(columnLiteral(schemaPkg, rel.PrimaryKey.Column))
			stmts := []jen.Code{jen.Lit(rel.Name), jen.Lit(rel.ID), jen.Id("pk")}
			colVars := make([]string, len(rel.Columns))
			for i, c := range rel.Columns {
				v := fmt.Sprintf("col%d", i)
				colVars[i] = v
				g.Id(v).Op(":=").Add(columnLiteral(schemaPkg, c))
				stmts = append(stmts, jen.Id(v))
			}
			g.Id("rel").Op(":=").Qual(schemaPkg, "NewRelation").Call(stmts...)
			for _, k := range rel.SecondaryKeys {
				g.Id("rel").Op("=").Id("rel").Dot("WithSecondaryKey").Call(
					jen.Qual(schemaPkg, "SecondaryKey").Call(jen.Lit(k.Name), columnLiteral(schemaPkg, k.Column)),
				)
			}
			g.Return(jen.Id("rel"))
		})

	return f, nil
}

func fieldZeroCheck(c schema.Column, field *jen.Statement) *jen.Statement {
	switch c.Kind {
	case schema.KindString:
		return field.Clone().Op("==").Lit("")
	case schema.KindBytes:
		return jen.Len(field.Clone()).Op("==").Lit(0)
	case schema.KindBool:
		return jen.Op("!").Add(field.Clone())
	case schema.KindTimestamp:
		return field.Clone().Dot("IsZero").Call()
	default:
		return field.Clone().Op("==").Lit(0)
	}
}

func emitSetField(b *jen.Group, c schema.Column) {
	target := jen.Id("r").Dot(goFieldName(c.Name))
	switch c.Kind {
	case schema.KindString:
		b.Switch(jen.Id("s").Op(":=").Id("v").Assert(jen.Type())).BlockFunc(func(cc *jen.Group) {
			cc.Case(jen.String()).Block(target.Clone().Op("=").Id("s"))
			cc.Case(jen.Index().Byte()).Block(target.Clone().Op("=").String().Call(jen.Id("s")))
		})
	case schema.KindBytes:
		b.Switch(jen.Id("s").Op(":=").Id("v").Assert(jen.Type())).BlockFunc(func(cc *jen.Group) {
			cc.Case(jen.Index().Byte()).Block(target.Clone().Op("=").Id("s"))
			cc.Case(jen.String()).Block(target.Clone().Op("=").Index().Byte().Call(jen.Id("s")))
		})
	case schema.KindBool:
		b.Switch(jen.Id("n").Op(":=").Id("v").Assert(jen.Type())).BlockFunc(func(cc *jen.Group) {
			cc.Case(jen.Bool()).Block(target.Clone().Op("=").Id("n"))
		})
	case schema.KindFloat32, schema.KindFloat64:
		b.Switch(jen.Id("n").Op(":=").Id("v").Assert(jen.Type())).BlockFunc(func(cc *jen.Group) {
			cc.Case(jen.Float64()).Block(target.Clone().Op("=").Add(goType(c)).Call(jen.Id("n")))
			cc.Case(jen.Float32()).Block(target.Clone().Op("=").Add(goType(c)).Call(jen.Id("n")))
		})
	case schema.KindInt64:
		// database/sql's parameter converter normalizes all bound/scanned
		// integers to int64, so this is already the native wire type.
		b.Switch(jen.Id("n").Op(":=").Id("v").Assert(jen.Type())).BlockFunc(func(cc *jen.Group) {
			cc.Case(jen.Int64()).Block(target.Clone().Op("=").Id("n"))
		})
	case schema.KindTimestamp:
		b.Switch(jen.Id("n").Op(":=").Id("v").Assert(jen.Type())).BlockFunc(func(cc *jen.Group) {
			cc.Case(jen.Qual("time", "Time")).Block(target.Clone().Op("=").Id("n"))
			cc.Case(jen.Int64()).Block(target.Clone().Op("=").Qual("time", "UnixMilli").Call(jen.Id("n")))
		})
	default:
		// Other integer-kind and enum columns: database/sql's parameter
		// converter normalizes all bound/scanned integers to int64, but the
		// struct field keeps its narrower declared type.
		b.Switch(jen.Id("n").Op(":=").Id("v").Assert(jen.Type())).BlockFunc(func(cc *jen.Group) {
			cc.Case(jen.Int64()).Block(target.Clone().Op("=").Add(goType(c)).Call(jen.Id("n")))
			cc.Case(goType(c)).Block(target.Clone().Op("=").Id("n"))
		})
	}
	b.Return(jen.Nil())
}

func columnLiteral(schemaPkg string, c schema.Column) *jen.Statement {
	ctor := map[schema.Kind]string{
		schema.KindBool:      "Bool",
		schema.KindInt8:      "Int8",
		schema.KindInt16:     "Int16",
		schema.KindInt32:     "Int32",
		schema.KindInt64:     "Int64",
		schema.KindChar:      "Char",
		schema.KindFloat32:   "Float32",
		schema.KindFloat64:   "Float64",
		schema.KindString:    "String",
		schema.KindBytes:     "Bytes",
		schema.KindTimestamp: "Timestamp",
		schema.KindEnum:      "Enum",
	}[c.Kind]
	return jen.Qual(schemaPkg, ctor).Call(jen.Lit(c.ID), jen.Lit(c.Name))
}

func goType(c schema.Column) *jen.Statement {
	switch c.Kind {
	case schema.KindBool:
		return jen.Bool()
	case schema.KindInt8:
		return jen.Int8()
	case schema.KindInt16:
		return jen.Int16()
	case schema.KindInt32, schema.KindEnum:
		return jen.Int32()
	case schema.KindInt64:
		return jen.Int64()
	case schema.KindChar:
		return jen.Rune()
	case schema.KindFloat32:
		return jen.Float32()
	case schema.KindFloat64:
		return jen.Float64()
	case schema.KindString:
		return jen.String()
	case schema.KindBytes:
		return jen.Index().Byte()
	case schema.KindTimestamp:
		return jen.Qual("time", "Time")
	default:
		return jen.Any()
	}
}

// FileName returns the conventional output filename for rel.
func FileName(rel *schema.Relation) string { return fileName(rel.Name) }
