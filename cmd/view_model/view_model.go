// view_model shows a trained model in human readable format, one line
// per topic listing its words by decreasing weight.  It prints to the
// standard output, or runs as a Web server presenting HTML if -html is
// set.  The model is either a model file (-model_file), or a
// checkpoint of a distributed training job (-config_file, with
// -iteration defaulting to the most recent one).  To make the model
// readable, you can specify a translation file of lines
// `<word> <display name>`.
package main

import (
	"flag"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/utils"
	"github.com/openbigdatagroup/plda/srv"
)

func main() {
	flagModel := flag.String("model_file", "", "The model file")
	flagConfig := flag.String("config_file", "", "Configuration of a distributed job")
	flagIteration := flag.Int("iteration", -1, "Checkpoint iteration; -1 for the most recent")
	flagTrans := flag.String("trans", "", "The word translation file")
	flagMaxWordsPerTopic := flag.Int("len", 50, "Max # words shown per topic; 0 for all")
	flagHtml := flag.String("html", "", "Serve HTML on this address instead of printing")
	flag.Parse()
	defer log.Flush()

	weights, e := loadWeights(*flagModel, *flagConfig, *flagIteration)
	if e != nil {
		log.Fatal(e)
	}
	if len(*flagTrans) > 0 {
		tr, e := utils.LoadTranslation(*flagTrans)
		if e != nil {
			log.Fatal(e)
		}
		weights.Vocab = utils.TranslatedVocab(weights.Vocab, tr)
	}
	descs := utils.DescribeTopics(weights, *flagMaxWordsPerTopic)

	if len(*flagHtml) == 0 {
		if e := printTopics(os.Stdout, descs); e != nil {
			log.Fatal(e)
		}
		return
	}

	tmpl := template.Must(template.New("topics").Parse(kTopicDescTemplate))
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if e := tmpl.Execute(w, descs); e != nil {
			http.Error(w, e.Error(), http.StatusInternalServerError)
			log.Errorf("Cannot execute HTML template: %v", e)
		}
	})
	log.Infof("Listening on %s", *flagHtml)
	if e := http.ListenAndServe(*flagHtml, nil); e != nil {
		log.Fatalf("ListenAndServe failed: %v", e)
	}
}

func loadWeights(model, config string, iteration int) (utils.TopicWeights, error) {
	if len(model) > 0 {
		// Integer counts parse as reals, so both kinds of model load.
		a, e := utils.LoadAccumulativeModel(model)
		if e != nil {
			return utils.TopicWeights{}, e
		}
		return utils.WeightsOfAccumulativeModel(a), nil
	}

	if len(config) == 0 {
		return utils.TopicWeights{}, fmt.Errorf("either -model_file or -config_file is required")
	}
	cfg, e := srv.LoadConfig(config)
	if e != nil {
		return utils.TopicWeights{}, e
	}
	if iteration < 0 {
		if iteration, e = srv.FindMostRecentCheckpoint(cfg); e != nil {
			return utils.TopicWeights{}, e
		} else if iteration < 0 {
			return utils.TopicWeights{}, fmt.Errorf("no checkpoint in %s", cfg.JobDir)
		}
	}
	log.Infof("Showing checkpoint of iteration %d", iteration)
	m, e := srv.LoadCheckpoint(cfg, iteration)
	if e != nil {
		return utils.TopicWeights{}, e
	}
	return utils.WeightsOfModel(m), nil
}

func printTopics(w io.Writer, descs []*utils.TopicDesc) error {
	for _, d := range descs {
		if _, e := fmt.Fprintln(w, d); e != nil {
			return e
		}
	}
	return nil
}

const (
	kTopicDescTemplate = `<html>
<body style="background-color: #CFEDFB">
  <table>
    <thead style="background-color: #046293; color: white;">
      <tr>
        <td>ID</td>
        <td>Frequency</td>
        <td colspan=100>Words</td>
      </tr>
    </thead>
    <tbody style="background-color: #046293; color: white;">
    {{range .}}
      <tr>
        <td>{{.Id}}</td>
        <td>{{.Nt}}</td>
        {{range .Tokens}}
          <td style="background-color: #BFEFFF;">{{.Word}}</td>
          <td style="background-color: #00A0DC; color: white;">{{.Weight}}</td>
        {{end}}
      </tr>
    {{end}}
    </tbody>
  </body>
</html>
`
)
