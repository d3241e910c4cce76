// Package schema declares and checks the shape of action payloads.
//
// A Schema maps payload field names to Types. Handlers attach a Schema so the
// compiled reducer can reject malformed payloads before the handler runs:
//
//	tree.Handler{
//	    Name:    "rename",
//	    Fn:      rename,
//	    Payload: schema.Schema{"id": schema.String(), "title": schema.String()},
//	}
//
// Fields are required unless wrapped in Optional. Schemas can also be written as
// type strings, which is how they are rendered by the HTTP adapter:
//
//	s, err := schema.ParseTypeMap(map[string]string{"by": "int?", "tags": "[string]"})
//
// The package depends only on the standard library.
package schema
