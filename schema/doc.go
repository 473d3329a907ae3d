// Package schema describes the external schema descriptor the engine
// consumes: relation name, numeric relation id, primary-key column(s),
// secondary-key columns, and named queries. How a descriptor is produced — hand-written, loaded from a config file, or
// generated — is outside this package; schema only defines its shape.
//
//	cols := []schema.Column{
//	    schema.String(1, "name"),
//	    schema.Int32(2, "age"),
//	    schema.Bool(3, "registered"),
//	}
//	person := schema.NewRelation("Person", 1, schema.PrimaryKey(cols[0]), cols...).
//	    WithSecondaryKey(schema.SecondaryKey("byRegisteredName", cols[2])).
//	    WithQuery(querylang.New("byRegisteredName",
//	        querylang.Eq("registered", querylang.Placeholder("registered")),
//	    ).OrderByClause(querylang.Asc("name")))
package schema
