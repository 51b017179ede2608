// infer computes the topic distribution of every document of
// -inference_data_file given a trained model, and writes one line of
// -num_topics probabilities per document to -inference_result_file.
// Documents with no word known to the model get a line of zeros.
//
// With -addr, infer runs as a Web server instead, interpreting text
// queries typed into a form.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strconv"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/gibbs"
	"github.com/openbigdatagroup/plda/core/utils"
)

func main() {
	var opts gibbs.Options
	flag.Float64Var(&opts.Alpha, "alpha", -1, "Topic prior")
	flag.Float64Var(&opts.Beta, "beta", -1, "Word prior")
	flag.IntVar(&opts.TotalIterations, "total_iterations", -1, "Sampling iterations per document")
	flag.IntVar(&opts.BurnInIterations, "burn_in_iterations", -1,
		"Iterations before the topic distribution is accumulated")
	flagModel := flag.String("model_file", "", "Trained model")
	flagData := flag.String("inference_data_file", "", "Documents to be inferred")
	flagResult := flag.String("inference_result_file", "", "Output topic distributions")
	flagCache := flag.Int("cache", -1, "Smoothed model cache in MB; negative caches all words")
	flagSegmenter := flag.String("segmenter", "",
		"sego dictionary; if set, documents and queries are raw text")
	flagAddr := flag.String("addr", "", "Serve queries on this address, e.g. :6061")
	flagMaxWordsPerTopic := flag.Int("len", 20, "Max # words shown per topic")
	flag.Parse()
	defer log.Flush()

	if e := opts.ValidateInference(); e != nil {
		log.Fatalf("Invalid flags: %v", e)
	}
	if len(*flagModel) == 0 {
		log.Fatal("-model_file must be specified")
	}

	m, e := utils.LoadModel(*flagModel)
	if e != nil {
		log.Fatal(e)
	}
	log.Infof("Smoothing model and creating interpreter ...")
	itr, e := gibbs.NewInterpreter(m, opts, *flagCache)
	if e != nil {
		log.Fatal(e)
	}
	format := new(utils.CorpusFormat)
	if len(*flagSegmenter) > 0 {
		format.Segmenter = utils.NewSegmenter(*flagSegmenter)
	}

	if len(*flagAddr) > 0 {
		descs := utils.DescribeTopics(utils.WeightsOfModel(m), *flagMaxWordsPerTopic)
		http.HandleFunc("/", MakeSafe(NewHandler(itr, format, descs)))
		log.Infof("Listening on %s", *flagAddr)
		if e := http.ListenAndServe(*flagAddr, nil); e != nil {
			log.Fatalf("ListenAndServe failed: %v", e)
		}
		return
	}

	if len(*flagData) == 0 || len(*flagResult) == 0 {
		log.Fatal("Both -inference_data_file and -inference_result_file must be specified")
	}
	if e := inferFile(itr, format, *flagData, *flagResult); e != nil {
		log.Fatal(e)
	}
}

func inferFile(itr *gibbs.Interpreter, format *utils.CorpusFormat,
	input, output string) error {

	r, e := utils.OpenReader(input)
	if e != nil {
		return e
	}
	defer r.Close()

	w, e := utils.CreateWriter(output)
	if e != nil {
		return e
	}

	n, e := Infer(itr, format, r, w)
	if ce := w.Close(); e == nil && ce != nil {
		e = fmt.Errorf("closing %s: %v", output, ce)
	}
	if e != nil {
		return e
	}
	log.Infof("Inferred %d documents into %s", n, output)
	return nil
}

// Infer writes a line of topic probabilities for each document of r,
// and returns the number of documents.
func Infer(itr *gibbs.Interpreter, format *utils.CorpusFormat, r io.Reader,
	w io.Writer) (int, error) {

	bw := bufio.NewWriter(w)
	zeros := make([]float64, itr.NumTopics())
	n := 0
	e := format.ScanDocuments(r, func(index int, counts []gibbs.WordCount) error {
		dist, e := itr.Interpret(counts)
		if errors.Is(e, gibbs.ErrEmptyDoc) {
			log.V(1).Infof("Document %d has no known word", index)
			dist = zeros
		} else if e != nil {
			return fmt.Errorf("document %d: %w", index, e)
		}
		for k, p := range dist {
			if k > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
		}
		n++
		return bw.WriteByte('\n')
	})
	if e != nil {
		return n, e
	}
	return n, bw.Flush()
}
