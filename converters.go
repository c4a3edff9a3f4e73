package docdex

import "github.com/kailas-cloud/docdex/internal/domain"

func toDomainPolicy(p IndexingPolicy) *domain.IndexingPolicy {
	out := &domain.IndexingPolicy{
		IndexingMode: domain.IndexingMode(p.IndexingMode),
		Automatic:    p.Automatic,
	}
	for _, in := range p.IncludedPaths {
		dp := domain.IncludedPath{Path: in.Path}
		for _, ix := range in.Indexes {
			dp.Indexes = append(dp.Indexes, domain.Index{
				Kind:      domain.IndexKind(ix.Kind),
				DataType:  domain.IndexDataType(ix.DataType),
				Precision: ix.Precision,
			})
		}
		out.IncludedPaths = append(out.IncludedPaths, dp)
	}
	for _, ex := range p.ExcludedPaths {
		out.ExcludedPaths = append(out.ExcludedPaths, domain.ExcludedPath{Path: ex.Path})
	}
	return out
}

func fromDomainPolicy(p *domain.IndexingPolicy) IndexingPolicy {
	if p == nil {
		p = domain.DefaultIndexingPolicy()
	}
	out := IndexingPolicy{
		IndexingMode: IndexingMode(p.IndexingMode),
		Automatic:    p.Automatic,
	}
	for _, in := range p.IncludedPaths {
		pp := IncludedPath{Path: in.Path}
		for _, ix := range in.Indexes {
			pp.Indexes = append(pp.Indexes, Index{
				Kind:      IndexKind(ix.Kind),
				DataType:  IndexDataType(ix.DataType),
				Precision: ix.Precision,
			})
		}
		out.IncludedPaths = append(out.IncludedPaths, pp)
	}
	for _, ex := range p.ExcludedPaths {
		out.ExcludedPaths = append(out.ExcludedPaths, ExcludedPath{Path: ex.Path})
	}
	return out
}

func fromDomainDatabase(d domain.Database) DatabaseInfo {
	return DatabaseInfo{ID: d.ID, ETag: d.ETag}
}

func fromDomainContainer(c domain.Container) ContainerInfo {
	info := ContainerInfo{
		ID:             c.ID,
		ETag:           c.ETag,
		IndexingPolicy: fromDomainPolicy(c.IndexingPolicy),
	}
	if c.PartitionKey != nil {
		info.PartitionKeyPaths = c.PartitionKey.Paths
	}
	return info
}
