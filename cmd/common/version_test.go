package common

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, ProjectVersion, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)

	s := VersionString("backtest")
	assert.Contains(t, s, "backtest v"+ProjectVersion)
	assert.Contains(t, s, BuildCommit)
	assert.Contains(t, GetFullVersion(), ProjectVersion)
	assert.True(t, IsDevBuild())
}
