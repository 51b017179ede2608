package main

import (
	"html/template"
	"net/http"
	"sort"
	"strings"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/gibbs"
	"github.com/openbigdatagroup/plda/core/utils"
)

// MakeSafe converts panics of h into internal server errors.
func MakeSafe(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				log.Errorf("panic: %v", p)
			}
		}()
		h(w, r)
	}
}

type Topic struct {
	Weight float64
	Desc   *utils.TopicDesc
}

// queryCounts turns a query into word counts.  Without a segmenter,
// every whitespace-separated field is a word.
func queryCounts(format *utils.CorpusFormat, q string) ([]gibbs.WordCount, error) {
	if format.Segmenter != nil {
		return format.Parse(strings.Fields(q))
	}
	var fields []string
	for _, w := range strings.Fields(q) {
		fields = append(fields, w, "1")
	}
	return format.Parse(fields)
}

func NewHandler(itr *gibbs.Interpreter, format *utils.CorpusFormat,
	descs []*utils.TopicDesc) http.HandlerFunc {
	tmpl := template.Must(template.New("interpret").Parse(kTemplate))

	return func(w http.ResponseWriter, r *http.Request) {
		var data []Topic

		if q := r.FormValue("q"); len(q) > 0 {
			counts, e := queryCounts(format, q)
			if e != nil {
				http.Error(w, e.Error(), http.StatusBadRequest)
				return
			}
			log.V(1).Infof("query words: %v", counts)

			dist, e := itr.Interpret(counts)
			if e != nil {
				http.Error(w, e.Error(), http.StatusBadRequest)
				return
			}

			for k, p := range dist {
				if p > 0 {
					data = append(data, Topic{p, descs[k]})
				}
			}
			sort.SliceStable(data, func(i, j int) bool { return data[i].Weight > data[j].Weight })
			if len(data) > kMaxTopics {
				data = data[:kMaxTopics]
			}
		}

		if e := tmpl.Execute(w, data); e != nil {
			http.Error(w, e.Error(), http.StatusInternalServerError)
			log.Errorf("Cannot execute HTML template: %v", e)
			return
		}
	}
}

const (
	kTemplate = `<html>
  <head>
    <style type="text/css">
      td {font-family:Courier 10px;}
    </style>
  </head>
  <body style="background-color: #B0E2FF;">
    <form name="input" action="/" method="get" >
      <input type="textarea" name="q" size=80>
      <input type="submit" value="Interpret"></input>
    </form>
    <table>
      <thead style="border: 1px; background-color: #0198E1; color: yellow;">
        <tr>
          <td>P(topic|input)</td>
          <td>N(topic)</td>
          <td colspan=100>N(word, topic)</td>
        </tr>
      </thead>
      <tbody style="background-color: #BFEFFF; border: 1px;">
        {{range .}}
        <tr>
          <td>{{printf "%.4f" .Weight}}</td>
          {{with .Desc}}
          <td>{{.Nt}}</td>
          {{range .Tokens}}
          <td>{{.Word}}</td>
          <td>{{.Weight}}</td>
          {{end}}
          {{end}}
        </tr>
      {{end}}
      </tbody>
    </table>
  </body>
</html>
`
	kMaxTopics = 10
)
