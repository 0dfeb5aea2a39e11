//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package vv

import (
	"time"
)

const (
	MYNAME    = "ParagraphVectorTopicModeler"
	SHORTNAME = "PVTM"
	VERSION   = "1.2.0"

	CONFIGLOCATION = ".config/pvtm"
	CONFIGNAME     = "pvtm-conf.json"
	JSONINDENT     = "  "

	// artifact names inside the output directory; the column layout of the
	// csv files is a persisted contract: do not reorder without versioning

	DOCUMENTSCSV  = "documents.csv"
	TOPICSCSV     = "topics.csv"
	VECTORSTSV    = "vectors.tsv"
	VECTORSCTRTSV = "vectors_with_center.tsv"
	EMBMODELFILE  = "embeddings.gob.gz"
	GMMMODELFILE  = "gmm.gob.gz"
	BICPLOTFILE   = "bic.html"
	TOPICPLOTFILE = "gmm_topics.html"
	TSNEPLOTFILE  = "tsne_scatter.html"
	VAULTFILE     = "pvtm-vault.db"

	DEFAULTOUTPUT    = "./Output"
	DEFAULTLANGUAGE  = "autodetect"
	DEFAULTEPOCHS    = 10
	DEFAULTDIMENSION = 100
	DEFAULTMODELTYPE = "w2v" // "w2v", "glove", "lexvec"

	DEFAULTGMMSTART   = 10
	DEFAULTGMMEND     = 40
	DEFAULTGMMSTEP    = 4
	DEFAULTGMMNINITS  = 2
	DEFAULTTOPICWORDS = 50
	DEFAULTSIMWORDS   = 30
	DEFAULTSIMDOCS    = 30

	DEFAULTGOLOGLEVEL = 0
	SERVEDFROMHOST    = "127.0.0.1"
	SERVEDFROMPORT    = 8999

	// EM internals
	GMMMAXITERATIONS = 100
	GMMCONVERGETOL   = 1.0e-3
	GMMCOVARIANCEREG = 1.0e-6
	GMMMINVARIANCE   = 1.0e-2

	WRITEPERMS = 0644
	DIRPERMS   = 0700
)

var (
	// DefaultCovariances - the covariance families searched when "-gcv" is not set
	DefaultCovariances = []string{"spherical", "diag", "tied"}

	LaunchTime = time.Now()
)

const HELPTEXT = `usage: pvtm [options]
S1common:S0
   C1-iC0  <file>   input file: one document per line
   C1-oC0  <dir>    output directory (default: "C3%sC0")
   C1-lC0  <lang>   stopword language: "en", "de" or "autodetect" (default)
   C1-glC0 <num>    terminal log level: 0 quiet ... 5 very noisy
S1embeddings:S0
   C1-dC0    <num>  embedding dimension (default %d)
   C1-eC0    <num>  training epochs (default %d)
   C1-mtC0   <s>    model type: w2v, glove, lexvec (default "%s")
   C1-d2vpC0 <dir>  use the pretrained embedding model stored in <dir>
S1clustering:S0
   C1-grC0   <s e s> component grid: start end step (default %d %d %d)
   C1-gcvC0  <list>  covariance families from {spherical diag tied full}
   C1-giC0   <num>   random restarts per grid cell (default %d)
   C1-gvC0           prolix progress output during the grid search
   C1-gmmpC0 <dir>   use the pretrained mixture stored in <dir>
S1labeling:S0
   C1-ntpC0 <num>   top words stored per topic (default %d)
   C1-nswC0 <num>   similar words stored per topic (default %d)
   C1-nsdC0 <num>   similar documents stored per topic (default %d)
S1other:S0
   C1-srvC0         serve the output directory when done
   C1-saC0  <addr>  serving address (default "C3%sC0")
   C1-spC0  <num>   serving port (default C3%dC0)
   C1-wcC0  <num>   grid search workers (default: one per cpu core)
   C1-bwC0          no colors when printing to the terminal
   C1-qC0           skip the startup banner
   C1-cpuprofC0     write a cpu profile of the run
   C1-vC0           print version and exit
   C1-hC0           print this help
`
