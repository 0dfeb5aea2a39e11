//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package web

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/VikaNa/pvtm-core/internal/store"
	"github.com/VikaNa/pvtm-core/internal/vv"
	"github.com/labstack/echo/v4"
)

//
// ROUTE HANDLERS
//

// RtFrontpage - a bare list of links into the output directory
func RtFrontpage(c echo.Context) error {
	const PAGE = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<h3>%s (v.%s)</h3>
<ul>
%s
</ul>
</body>
</html>`

	files := []string{
		vv.TOPICSCSV, vv.DOCUMENTSCSV, vv.VECTORSTSV, vv.VECTORSCTRTSV,
		vv.BICPLOTFILE, vv.TOPICPLOTFILE, vv.TSNEPLOTFILE,
	}
	extra := []string{"get/json/topics", "get/json/documents"}

	var sb strings.Builder
	for _, f := range files {
		sb.WriteString(fmt.Sprintf("<li><a href=\"/files/%s\">%s</a></li>\n", f, f))
	}
	for _, x := range extra {
		sb.WriteString(fmt.Sprintf("<li><a href=\"/%s\">%s</a></li>\n", x, x))
	}

	return c.HTML(http.StatusOK, fmt.Sprintf(PAGE, vv.SHORTNAME, vv.MYNAME, vv.VERSION, sb.String()))
}

// RtJSONTopics - topics.csv as a json array of objects
func RtJSONTopics(c echo.Context) error {
	return tableasjson(c, vv.TOPICSCSV)
}

// RtJSONDocuments - documents.csv as a json array of objects
func RtJSONDocuments(c echo.Context) error {
	return tableasjson(c, vv.DOCUMENTSCSV)
}

// RtJSONNeighbors - the nearest vocabulary neighbors of ":wd"; requires a
// model in memory, so only available when the run itself launched the server
func RtJSONNeighbors(c echo.Context) error {
	wd := c.Param("wd")

	if servedmodel == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "no embedding model loaded"})
	}

	nn, err := servedmodel.NeighborsOf(wd, servedcfg.NumSimWords)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("'%s' is not in the vocabulary", wd)})
	}
	return c.JSON(http.StatusOK, nn)
}

func tableasjson(c echo.Context, name string) error {
	recs, err := store.ReadCSV(filepath.Join(servedcfg.OutputDir, name))
	if err != nil || len(recs) < 1 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("could not read '%s'", name)})
	}

	header := recs[0]
	rows := make([]map[string]string, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return c.JSON(http.StatusOK, rows)
}
