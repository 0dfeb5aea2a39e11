//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/VikaNa/pvtm-core/internal/emb"
	"github.com/VikaNa/pvtm-core/internal/gmm"
	"github.com/VikaNa/pvtm-core/internal/graph"
	"github.com/VikaNa/pvtm-core/internal/lnch"
	"github.com/VikaNa/pvtm-core/internal/prep"
	"github.com/VikaNa/pvtm-core/internal/store"
	"github.com/VikaNa/pvtm-core/internal/topics"
	"github.com/VikaNa/pvtm-core/internal/vv"
	"github.com/VikaNa/pvtm-core/web"
	"github.com/google/uuid"
	"github.com/pkg/profile"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// every restart r of a grid cell runs at SELECTIONSEED + r; a fixed base
	// seed keeps reruns over unchanged data comparable
	SELECTIONSEED = 42

	VAULTEMB = "embeddings"
	VAULTGMM = "gmm"
)

var (
	Msg    = lnch.NewMessageMakerWithDefaults()
	Config *lnch.CurrentConfiguration
)

func main() {
	Config = lnch.ConfigAtLaunch()

	// the package messengers were built before the flags were parsed;
	// re-point them at the live configuration
	for _, m := range []*lnch.MessageMaker{Msg, emb.Msg, gmm.Msg, topics.Msg, store.Msg, graph.Msg, web.Msg} {
		m.Cfg = Config
	}

	if Config.ProfileCPU {
		defer profile.Start().Stop()
	}

	if !Config.QuietStart {
		Msg.Emit(fmt.Sprintf("%s (v.%s) [loglevel=%d]", vv.MYNAME, vv.VERSION, Config.LogLevel), lnch.MSGMAND)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runid := strings.Split(uuid.New().String(), "-")[0]
	mdl := runpipeline(ctx, runid)

	if Config.ServeResults {
		web.StartResultsServer(Config, mdl)
	}
}

// runpipeline - corpus -> embeddings -> mixture -> assignments -> labels; every
// artifact lands in the output directory along the way
func runpipeline(ctx context.Context, runid string) *emb.Embedder {
	const (
		MSGLANG = "language set to '%s'"
		MSGRUN  = "run %s over '%s'"
	)

	pr := message.NewPrinter(language.English)
	start := time.Now()
	previous := time.Now()

	Msg.Emit(fmt.Sprintf(MSGRUN, runid, Config.InputPath), lnch.MSGNOTE)

	err := os.MkdirAll(Config.OutputDir, vv.DIRPERMS)
	Msg.EF(err, "MkdirAll()")

	// [a] read and clean the corpus

	raw, err := store.ReadCorpus(Config.InputPath)
	Msg.EF(err, "ReadCorpus()")
	corpus := prep.CleanCorpus(raw)
	Msg.Timer("A1", pr.Sprintf("%d documents read and cleaned", len(corpus)), start, previous)
	previous = time.Now()

	// [b] stopwords; sniff the language if nobody named one

	lang := Config.Language
	if lang == "autodetect" {
		lang = prep.SniffLanguage(corpus)
		Msg.Emit(fmt.Sprintf(MSGLANG, lang), lnch.MSGNOTE)
	}
	stopwords := prep.StopwordSlice(lang)

	// [c] the model vault: expensive artifacts keyed by their fingerprint

	vault, err := store.OpenVault(filepath.Join(Config.OutputDir, vv.VAULTFILE))
	if err != nil {
		Msg.Emit(fmt.Sprintf("continuing without a model vault: %v", err), lnch.MSGWARN)
		vault = nil
	} else {
		defer vault.Close()
	}

	// [d] the embedding space and the document vectors

	contentfp := store.Fingerprint(corpus...)
	embfp := store.Fingerprint(contentfp, Config.ModelType, strconv.Itoa(Config.Dimension),
		strconv.Itoa(Config.Epochs), lang)

	mdl := acquireembeddings(vault, embfp, runid, corpus)
	vs := mdl.Docs
	Msg.Timer("A2", pr.Sprintf("document vectors ready: %d × %d", vs.Count(), vs.Dimension()), start, previous)
	previous = time.Now()

	err = store.WriteVectorsTSV(filepath.Join(Config.OutputDir, vv.VECTORSTSV), vs)
	Msg.EF(err, "WriteVectorsTSV()")

	// [e] the mixture: load pretrained or search the candidate grid

	mix := acquiremixture(ctx, vault, embfp, runid, vs)
	Msg.Timer("B1", fmt.Sprintf("mixture ready: %d components, %s covariance", mix.K, mix.Covariance), start, previous)
	previous = time.Now()

	// [f] soft and hard topic assignments

	asg, ctr, err := topics.Assign(mix, vs)
	Msg.EF(err, "Assign()")

	err = store.WriteDocumentsCSV(filepath.Join(Config.OutputDir, vv.DOCUMENTSCSV), raw, asg)
	Msg.EF(err, "WriteDocumentsCSV()")

	err = store.WriteVectorsWithCenters(filepath.Join(Config.OutputDir, vv.VECTORSCTRTSV), vs, mix.Means)
	Msg.EF(err, "WriteVectorsWithCenters()")

	if err = graph.TopicDistributionPlot(filepath.Join(Config.OutputDir, vv.TOPICPLOTFILE), ctr); err != nil {
		Msg.Emit(fmt.Sprintf("could not render the topic distribution: %v", err), lnch.MSGWARN)
	}
	if err = graph.TSNEScatter(filepath.Join(Config.OutputDir, vv.TSNEPLOTFILE), vs, asg); err != nil {
		Msg.Emit(fmt.Sprintf("could not render the t-SNE scatter: %v", err), lnch.MSGWARN)
	}
	Msg.Timer("C1", pr.Sprintf("%d documents assigned to %d topics", asg.Count(), ctr.K), start, previous)
	previous = time.Now()

	// [g] describe every topic and persist the descriptions

	descs := topics.Label(ctr, corpus, asg, stopwords, mdl, topics.LabelOptions{
		NumWords:    Config.NumTopicWords,
		NumSimWords: Config.NumSimWords,
		NumSimDocs:  Config.NumSimDocs,
	})

	err = store.WriteTopicsCSV(filepath.Join(Config.OutputDir, vv.TOPICSCSV), descs)
	Msg.EF(err, "WriteTopicsCSV()")
	Msg.Timer("C2", "topic descriptions written", start, previous)

	return mdl
}

// acquireembeddings - pretrained beats vaulted beats freshly trained; in every
// case the embedder that comes back carries document vectors for the current
// corpus
func acquireembeddings(vault *store.Vault, embfp string, runid string, corpus []string) *emb.Embedder {
	const (
		MSGPRE = "reusing the pretrained embedding model from '%s'"
		MSGVLT = "reusing vaulted embeddings (fingerprint %s)"
	)

	if Config.EmbSource.Pretrained() {
		Msg.Emit(fmt.Sprintf(MSGPRE, Config.EmbSource.Dir), lnch.MSGNOTE)
		loaded, err := store.LoadEmbedder(Config.EmbSource.Dir)
		Msg.EF(err, "LoadEmbedder()")

		// the stored document vectors belong to whatever corpus the model was
		// trained on; rebuild them over the current one
		mdl, err := emb.FromEmbeddings(loaded.Embs, corpus)
		Msg.EF(err, "FromEmbeddings()")
		return mdl
	}

	if vault != nil && vault.Check(embfp, VAULTEMB) {
		mdl, err := vaultedembeddings(vault, embfp)
		if err == nil {
			Msg.Emit(fmt.Sprintf(MSGVLT, embfp), lnch.MSGNOTE)
			return mdl
		}
		Msg.Emit(fmt.Sprintf("vaulted embeddings were unusable: %v", err), lnch.MSGWARN)
	}

	mdl, err := emb.Train(emb.Options{
		ModelType: Config.ModelType,
		Dim:       Config.Dimension,
		Epochs:    Config.Epochs,
		Verbose:   Config.LogLevel >= lnch.MSGTMI,
	}, corpus)
	Msg.EF(err, "Train()")

	err = store.SaveEmbedder(Config.OutputDir, mdl)
	Msg.EF(err, "SaveEmbedder()")

	if vault != nil {
		if payload, err := store.EncodeGobGz(mdl.ToSnapshot()); err == nil {
			if err = vault.Add(embfp, VAULTEMB, runid, payload); err != nil {
				Msg.Emit(fmt.Sprintf("could not vault the embeddings: %v", err), lnch.MSGWARN)
			}
		}
	}
	return mdl
}

// vaultedembeddings - pull an embedding snapshot out of the vault and rebuild
// the model from it
func vaultedembeddings(vault *store.Vault, embfp string) (*emb.Embedder, error) {
	payload, err := vault.Fetch(embfp, VAULTEMB)
	if err != nil {
		return nil, err
	}
	var s emb.Snapshot
	if err := store.DecodeGobGz(payload, &s); err != nil {
		return nil, err
	}
	return emb.FromSnapshot(&s)
}

// acquiremixture - load a pretrained mixture or run the BIC grid search; the
// pretrained path still has to survive the dimension check
func acquiremixture(ctx context.Context, vault *store.Vault, embfp string, runid string, vs *emb.VectorStore) *gmm.Mixture {
	const MSGPRE = "reusing the pretrained mixture from '%s'"

	if Config.GMMSource.Pretrained() {
		Msg.Emit(fmt.Sprintf(MSGPRE, Config.GMMSource.Dir), lnch.MSGNOTE)
		mix, err := store.LoadMixture(Config.GMMSource.Dir)
		Msg.EF(err, "LoadMixture()")
		err = store.CheckDimensions("the stored mixture", mix.Dim, vs)
		Msg.EF(err, "CheckDimensions()")
		return mix
	}

	covs := make([]gmm.CovarianceType, len(Config.GMMCvTypes))
	for i, cv := range Config.GMMCvTypes {
		c, err := gmm.ParseCovariance(cv)
		Msg.EF(err, "ParseCovariance()")
		covs[i] = c
	}

	mix, table, err := gmm.SelectModel(ctx, vs.Matrix(), gmm.GridOptions{
		ComponentStart: Config.GMMRange[0],
		ComponentEnd:   Config.GMMRange[1],
		ComponentStep:  Config.GMMRange[2],
		Covariances:    covs,
		Restarts:       Config.GMMNInits,
		Seed:           SELECTIONSEED,
		Workers:        Config.WorkerCount,
		Verbose:        Config.GMMVerbose,
		Fit:            gmm.DefaultFitOptions(),
	})
	Msg.EF(err, "SelectModel()")

	if err = graph.BICPlot(filepath.Join(Config.OutputDir, vv.BICPLOTFILE), table); err != nil {
		Msg.Emit(fmt.Sprintf("could not render the BIC plot: %v", err), lnch.MSGWARN)
	}

	err = store.SaveMixture(Config.OutputDir, mix)
	Msg.EF(err, "SaveMixture()")

	if vault != nil {
		gmmfp := store.Fingerprint(embfp,
			fmt.Sprintf("%d-%d-%d", Config.GMMRange[0], Config.GMMRange[1], Config.GMMRange[2]),
			strings.Join(Config.GMMCvTypes, ","), strconv.Itoa(Config.GMMNInits))
		if payload, err := store.EncodeGobGz(mix.ToSnapshot()); err == nil {
			if err = vault.Add(gmmfp, VAULTGMM, runid, payload); err != nil {
				Msg.Emit(fmt.Sprintf("could not vault the mixture: %v", err), lnch.MSGWARN)
			}
		}
	}
	return mix
}
