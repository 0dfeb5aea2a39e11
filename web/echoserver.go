//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package web

import (
	"fmt"

	"github.com/VikaNa/pvtm-core/internal/emb"
	"github.com/VikaNa/pvtm-core/internal/lnch"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var (
	Msg = lnch.NewMessageMakerWithDefaults()

	// set by StartResultsServer before any route can fire
	servedcfg   *lnch.CurrentConfiguration
	servedmodel *emb.Embedder
)

// StartResultsServer - serve the output directory and a few json views of it;
// this blocks and does not return while the program remains alive
func StartResultsServer(cfg *lnch.CurrentConfiguration, mdl *emb.Embedder) {
	const (
		LLOGFMT = "r: ${status}\tt: ${latency_human}\tu: ${uri}\n"
		MSGUP   = "serving the results at http://%s:%d"
	)

	servedcfg = cfg
	servedmodel = mdl

	e := echo.New()

	if cfg.LogLevel >= lnch.MSGNOTE {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Format: LLOGFMT}))
	}

	e.Use(middleware.Recover())

	//
	// ROUTES
	//

	// [a] frontpage ("rt-results.go")

	e.GET("/", RtFrontpage)

	// [b] the artifacts themselves

	e.Static("/files", cfg.OutputDir)

	// [c] json views of the stored tables ("rt-results.go")

	e.GET("/get/json/topics", RtJSONTopics)
	e.GET("/get/json/documents", RtJSONDocuments)

	// [d] live lookups against the loaded embedding space ("rt-results.go")

	e.GET("/get/json/neighbors/:wd", RtJSONNeighbors)

	Msg.Emit(fmt.Sprintf(MSGUP, cfg.HostIP, cfg.HostPort), lnch.MSGMAND)

	e.HideBanner = true
	e.HidePort = false
	e.Debug = false
	e.DisableHTTP2 = true
	e.Logger.Fatal(e.Start(fmt.Sprintf("%s:%d", cfg.HostIP, cfg.HostPort)))
}
