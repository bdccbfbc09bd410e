package testutil

import "time"

// StandardBuildTime is the creation time of the oldest standard build.
var StandardBuildTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// WithStandardTestData adds three builds one hour apart:
//
//	build-1  muons.yaml   module  RunAlgs   2 files
//	build-2  muons.yaml   module  RunAlgs   0 files  yaml
//	build-3  ntuple.yaml  ntuple  readAlgs  1 file
func (b *Builder) WithStandardTestData() *Builder {
	return b.
		WithBuild("build-1",
			Job("muons.yaml"),
			TopAlg("RunAlgs"),
			Config("<Registry unique=\"yes\"></Registry>"),
			Files("/data/a.root", "/data/b.root"),
			CreatedAt(StandardBuildTime),
		).
		WithBuild("build-2",
			Job("muons.yaml"),
			TopAlg("RunAlgs"),
			Format("yaml"),
			Config("AlgType: RunAlgs\n"),
			CreatedAt(StandardBuildTime.Add(time.Hour)),
		).
		WithBuild("build-3",
			Job("ntuple.yaml"),
			Kind("ntuple"),
			TopAlg("readAlgs"),
			Files("/eos/user/c.root"),
			CreatedAt(StandardBuildTime.Add(2*time.Hour)),
		)
}
