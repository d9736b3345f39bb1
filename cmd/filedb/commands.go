package main

import (
	"strconv"

	"github.com/arthur-debert/filedb/filedb/collection"
	"github.com/arthur-debert/filedb/filedb/query"
	"github.com/arthur-debert/filedb/internal/validation"
	"github.com/spf13/cobra"
)

func (a *app) insertCommand() *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "insert [field=value ...]",
		Short: "Insert a document",
		Long: `Insert a document built from --data and field=value assignments.
Values are read as JSON literals when possible (36, true, null, [1,2]),
otherwise as strings. Dotted fields create nested objects.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := buildDocument(data, args)
			if err != nil {
				return err
			}
			coll, err := a.collection("insert")
			if err != nil {
				return err
			}
			inserted, err := coll.Insert(doc, collection.Persist)
			if err != nil {
				return WrapError("insert", err)
			}
			a.logger.Info("inserted document", "collection", coll.Name(), "id", inserted.ID)
			return a.print(inserted)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "Document as a JSON object")
	return cmd
}

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <_id> [_id ...]",
		Short: "Get documents by primary id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("get", args)
			if err != nil {
				return err
			}
			coll, err := a.collection("get")
			if err != nil {
				return err
			}

			if len(ids) == 1 {
				doc, err := coll.Find(ids[0])
				if err != nil {
					return WrapError("get", err)
				}
				if doc == nil {
					return NewNotFoundError("get", ids[0], CommonSuggestions.CheckID)
				}
				return a.print(doc)
			}

			docs, err := coll.FindMany(ids)
			if err != nil {
				return WrapError("get", err)
			}
			return a.print(docs)
		},
	}
}

func (a *app) findCommand() *cobra.Command {
	var (
		path  string
		field string
		op    string
		value string
		one   bool
	)
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find documents by field comparison or path expression",
		Example: `  filedb -c users find --where age --op gte --value 18
  filedb -c users find --where address.city --value London --one
  filedb -c users find --path '$[?(@.age > 18 && @.active == true)]'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (path == "") == (field == "") {
				return &CLIError{
					Operation:   "find",
					Cause:       "exactly one of --path or --where is required",
					Suggestions: []string{CommonSuggestions.CheckQuery},
				}
			}

			if field != "" {
				if err := validation.Field(field); err != nil {
					return NewValidationError("find", "field", field, err.Error())
				}
				operator, err := query.ParseOperator(op)
				if err != nil {
					return NewValidationError("find", "operator", op,
						"Available operators: eq, ne, lt, gt, lte, gte (or ==, !=, <, >, <=, >=)")
				}
				literal := parseValue(value)
				switch literal.(type) {
				case map[string]any, []any:
					return NewValidationError("find", "value", value,
						"Compare with a string, number, boolean or null")
				}
				path = query.Translate(field, literal, operator)
			}

			coll, err := a.collection("find")
			if err != nil {
				return err
			}
			a.logger.Debug("running query", "collection", coll.Name(), "path", path, "one", one)

			if one {
				doc, err := coll.FindPath(path)
				if err != nil {
					return WrapError("find", err, "Drop --one to list every match")
				}
				return a.print(doc)
			}

			docs, err := coll.FindManyPath(path)
			if err != nil {
				return WrapError("find", err)
			}
			if docs == nil {
				docs = []*Document{}
			}
			return a.print(docs)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&path, "path", "", "JSONPath expression evaluated against the document array")
	flags.StringVar(&field, "where", "", "Field to compare (dotted for nested fields)")
	flags.StringVar(&op, "op", "eq", "Comparison operator")
	flags.StringVar(&value, "value", "", "Value to compare with, read as a JSON literal when possible")
	flags.BoolVar(&one, "one", false, "Expect at most one match")
	return cmd
}

func (a *app) allCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "List every document in insertion order",
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := a.collection("list")
			if err != nil {
				return err
			}
			docs, err := coll.All()
			if err != nil {
				return WrapError("list", err)
			}
			if docs == nil {
				docs = []*Document{}
			}
			return a.print(docs)
		},
	}
}

func (a *app) updateCommand() *cobra.Command {
	var (
		data    string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "update <_id> [field=value ...]",
		Short: "Update a document",
		Long: `Update a document. Fields from --data and field=value assignments are
merged into the stored document unless --replace is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("update", args[:1])
			if err != nil {
				return err
			}
			changes, err := buildDocument(data, args[1:])
			if err != nil {
				return err
			}
			coll, err := a.collection("update")
			if err != nil {
				return err
			}

			doc, err := coll.Find(ids[0])
			if err != nil {
				return WrapError("update", err)
			}
			if doc == nil {
				return NewNotFoundError("update", ids[0], CommonSuggestions.CheckID)
			}
			if replace {
				doc.Fields = changes.Fields
			} else {
				doc.Merge(changes)
			}

			if _, err := coll.Update(doc, collection.Persist); err != nil {
				return WrapError("update", err)
			}
			a.logger.Info("updated document", "collection", coll.Name(), "id", doc.ID)
			return a.print(doc)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&data, "data", "", "Fields as a JSON object")
	flags.BoolVar(&replace, "replace", false, "Replace all fields instead of merging")
	return cmd
}

func (a *app) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <_id> [_id ...]",
		Short: "Remove documents by primary id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("remove", args)
			if err != nil {
				return err
			}
			coll, err := a.collection("remove")
			if err != nil {
				return err
			}

			removed, err := coll.RemoveMany(ids, collection.Persist)
			if err != nil {
				return WrapError("remove", err)
			}
			if len(ids) == 1 && removed[0] == nil {
				return NewNotFoundError("remove", ids[0], CommonSuggestions.CheckID)
			}
			return a.print(removed)
		},
	}
}

func (a *app) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show collection details",
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := a.collection("show info")
			if err != nil {
				return err
			}
			ds, err := a.dataStore()
			if err != nil {
				return WrapError("show info", err)
			}
			return a.print(collectionInfo{
				Collection:    coll.Name(),
				DataStore:     ds.Name(),
				Tag:           ds.Tag(),
				Path:          coll.Path(),
				Documents:     coll.Len(),
				NextPrimaryID: coll.NextPrimaryID(),
				Generation:    coll.Generation(),
				Caching:       coll.CachingEnabled(),
				Encrypted:     a.cfg.Encrypted,
				Compressed:    a.cfg.Compressed,
			})
		},
	}
}

func (a *app) locationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "List configured location tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			defaultTag, err := a.client.DefaultTag()
			if err != nil {
				return WrapError("list locations", err)
			}
			var out []locationInfo
			for _, tag := range a.client.Tags() {
				root, _ := a.client.Location(tag)
				out = append(out, locationInfo{Tag: tag, Root: root, Default: tag == defaultTag})
			}
			return a.print(out)
		},
	}
}

func parseIDs(operation string, args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, NewValidationError(operation, "_id", arg, "Primary ids are positive integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
