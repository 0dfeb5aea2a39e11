//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package vv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpTextCoversEverySwitch(t *testing.T) {
	// every switch ConfigAtLaunch parses; a new flag must land here too
	switches := []string{
		"-i", "-o", "-l", "-gl",
		"-d", "-e", "-mt", "-d2vp",
		"-gr", "-gcv", "-gi", "-gv", "-gmmp",
		"-ntp", "-nsw", "-nsd",
		"-srv", "-sa", "-sp", "-wc", "-bw", "-q", "-cpuprof", "-v", "-h",
	}
	for _, sw := range switches {
		// switches are wrapped in color tags: "C1-ntpC0"
		assert.True(t, strings.Contains(HELPTEXT, "C1"+sw+"C0"), "'%s' missing from HELPTEXT", sw)
	}
}

func TestHelpTextFormatVerbCount(t *testing.T) {
	// ConfigAtLaunch feeds HELPTEXT thirteen values
	n := strings.Count(HELPTEXT, "%s") + strings.Count(HELPTEXT, "%d")
	assert.Equal(t, 13, n)
}
