// lda trains an LDA model on a single machine by collapsed Gibbs
// sampling.  Usage:
/*
  $GOPATH/bin/lda -num_topics=2 -alpha=0.1 -beta=0.01 \
    -training_data_file=./testdata/corpus -model_file=/tmp/lda_model.txt \
    -burn_in_iterations=100 -total_iterations=150
*/
// Each line of the training data is a document of `<word> <count>`
// pairs.  The output model file has a line `<word>\t<c0> <c1> ...` for
// each word, holding the average counts after burn-in.
package main

import (
	"flag"
	"math/rand"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/gibbs"
	"github.com/openbigdatagroup/plda/core/utils"
)

func main() {
	var opts gibbs.Options
	flag.IntVar(&opts.NumTopics, "num_topics", 0, "Number of topics to be learned")
	flag.Float64Var(&opts.Alpha, "alpha", -1, "Topic prior")
	flag.Float64Var(&opts.Beta, "beta", -1, "Word prior")
	flag.IntVar(&opts.TotalIterations, "total_iterations", -1, "Gibbs sampling iterations")
	flag.IntVar(&opts.BurnInIterations, "burn_in_iterations", -1,
		"Iterations before the model is accumulated")
	flag.BoolVar(&opts.ComputeLikelihood, "compute_likelihood", false,
		"Log the corpus log-likelihood every iteration")
	flagCorpus := flag.String("training_data_file", "", "Corpus file, gzipped if .gz")
	flagModel := flag.String("model_file", "", "The model output")
	flagAddr := flag.String("addr", "", "HTTP status page address, e.g. :6060")
	flagSeed := flag.Int64("seed", -1, "Seed of the random number generator")
	flagMinWordLen := flag.Int("min_word_length", 0, "Drop words with fewer runes")
	flagSkipLatin := flag.Bool("skip_latin_words", false,
		"Drop words containing lower-case ASCII letters")
	flagSegmenter := flag.String("segmenter", "",
		"sego dictionary; if set, the training data is raw text")
	flag.Parse()
	defer log.Flush()

	if e := opts.ValidateTraining(); e != nil {
		log.Fatalf("Invalid flags: %v", e)
	}
	if len(*flagCorpus) == 0 || len(*flagModel) == 0 {
		log.Fatal("Both -training_data_file and -model_file must be specified")
	}

	format := &utils.CorpusFormat{
		MinWordLength:  *flagMinWordLen,
		SkipLatinWords: *flagSkipLatin,
	}
	if len(*flagSegmenter) > 0 {
		format.Segmenter = utils.NewSegmenter(*flagSegmenter)
	}

	rng := rand.New(rand.NewSource(*flagSeed))
	vocab := gibbs.NewVocabulary()
	corpus, e := format.LoadCorpus(*flagCorpus, opts.NumTopics, vocab, rng)
	if e != nil {
		log.Fatal(e)
	}

	is := new(utils.Iterations)
	if len(*flagAddr) > 0 {
		is = utils.EnableExpvar(*flagAddr)
	}
	is.Start()
	_, accum, e := utils.Train(corpus, vocab, opts, rng, func(iter int, logl float64) {
		log.Infof("Iteration %04d done in %s", iter, is.End(logl).Duration)
		if iter+1 < opts.TotalIterations {
			is.Start()
		}
	})
	if e != nil {
		log.Fatal(e)
	}

	if e := utils.SaveModel(accum, *flagModel); e != nil {
		log.Fatal(e)
	}
}
