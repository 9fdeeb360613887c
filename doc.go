// Package relmodel is a relation-aware data-access layer over PostgreSQL.
//
// A repository.Model wraps one table and compiles list, count and single-row
// reads that embed related rows as JSON (hasOne, hasMany and correlated
// hasMany2 subqueries), with paging, sorting and multi-token search. Writes
// cover insert, edit with optional upsert, increments and soft delete.
//
// The root package binds models lazily to the global connection opened by
// the database package:
//
//	if _, err := database.InitDB(cfg); err != nil {
//		return err
//	}
//	posts := relmodel.NewService("posts", repository.WithRelations(
//		query.HasOne{Table: "users", As: "author", Columns: []string{"name"}},
//	))
//	res, err := posts.Paginate(ctx, &types.Request{Page: 1, PageSize: 20})
package relmodel
