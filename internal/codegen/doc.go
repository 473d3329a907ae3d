// Package codegen emits one static accessor file per relation, the
// compile-time counterpart to runtime reflection-based binding. Given a
// schema.Relation it writes a single Go source file declaring the relation's
// row struct, its querycompiler.Record/sqlstore.Record method pair, and a
// package-level function that rebuilds the relation's name, id, columns (id,
// name and kind), primary key and secondary keys. Column nullability,
// defaults and annotations, and the relation's queries, are not carried
// into the rebuilt *schema.Relation.
//
// Static Field/SetField bodies replace per-call reflection, nothing more.
package codegen
