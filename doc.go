// Package docdex provides a Go client for a DocumentDB-compatible document
// database service. It covers database and container management, item writes,
// SQL-like queries, and container indexing-policy administration, and it
// surfaces the per-operation request charge and index-transformation progress
// the service reports.
//
//	client, _ := docdex.New(
//	    docdex.WithEndpoint("https://localhost:8081"),
//	    docdex.WithKey(masterKey),
//	)
//	_, _ = client.Databases().CreateIfNotExists(ctx, "tour")
//	_, _ = client.Containers("tour").CreateIfNotExists(ctx, "samples",
//	    docdex.WithPartitionKey("/id"),
//	)
//	res, _ := client.Items("tour", "samples").Query(ctx,
//	    "SELECT * FROM c WHERE c.field1 = @v",
//	    docdex.WithParameter("@v", "Seattle 42"),
//	    docdex.WithCrossPartition(),
//	)
//	fmt.Println(res.Count, res.RequestCharge, res.Duration)
//
// Queries over paths the indexing policy excludes stay correct; only the
// reported charge and latency change. Replacing a policy starts an
// asynchronous index transformation whose progress is polled via
// Containers().WaitForIndexTransformation.
package docdex
