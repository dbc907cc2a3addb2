package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file containing entries of a convergence study")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	studies := readCSV(csvFile)
	keys := make([]string, 0, len(studies))
	for k := range studies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		cs := studies[key]
		fmt.Printf("Title = %s, Theta = %5.2f\n", cs.title, cs.theta)
		fmt.Printf("%6s %6s %12s %8s %12s %8s\n", "nT", "nX", "L2", "order", "max", "order")
		for i := range cs.nX {
			l2Order, maxOrder := cs.Order(i)
			fmt.Printf("%6d %6d %12.4e %8.3f %12.4e %8.3f\n",
				cs.nT[i], cs.nX[i], cs.l2[i], l2Order, cs.lInf[i], maxOrder)
		}
	}
}

type ConvergenceStudy struct {
	title    string
	theta    float64
	nT, nX   []int
	l2, lInf []float64
}

func NewConvergenceStudy(title string, theta float64) *ConvergenceStudy {
	return &ConvergenceStudy{
		title: title,
		theta: theta,
	}
}

func (cs *ConvergenceStudy) Add(nT, nX int, l2, lInf float64) {
	cs.nT = append(cs.nT, nT)
	cs.nX = append(cs.nX, nX)
	cs.l2 = append(cs.l2, l2)
	cs.lInf = append(cs.lInf, lInf)
}

// Order is the observed order between entry i-1 and i, measured against the
// space refinement. The first entry has none.
func (cs *ConvergenceStudy) Order(i int) (l2Order, maxOrder float64) {
	if i == 0 {
		return math.NaN(), math.NaN()
	}
	r := math.Log(float64(cs.nX[i]) / float64(cs.nX[i-1]))
	l2Order = math.Log(cs.l2[i-1]/cs.l2[i]) / r
	maxOrder = math.Log(cs.lInf[i-1]/cs.lInf[i]) / r
	return
}

func readCSV(csvFile string) (studies map[string]*ConvergenceStudy) {
	var (
		records  [][]string
		err      error
		f        *os.File
		ok       bool
		cs       *ConvergenceStudy
		theta    float64
		l2, lInf float64
	)
	studies = make(map[string]*ConvergenceStudy)
	if f, err = os.Open(csvFile); err != nil {
		panic(err)
	}
	defer f.Close()
	r := csv.NewReader(bufio.NewReader(f))
	if records, err = r.ReadAll(); err != nil {
		panic(err)
	}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		title, nttxt, nxtxt, thetatxt := rec[0], rec[1], rec[2], rec[3]
		nT, _ := strconv.Atoi(nttxt)
		nX, _ := strconv.Atoi(nxtxt)
		_, _ = fmt.Sscanf(thetatxt, "%f", &theta)
		combTitle := title + thetatxt
		if cs, ok = studies[combTitle]; !ok {
			cs = NewConvergenceStudy(title, theta)
			studies[combTitle] = cs
		}
		_, _ = fmt.Sscanf(rec[4], "%f", &l2)
		_, _ = fmt.Sscanf(rec[5], "%f", &lInf)
		cs.Add(nT, nX, l2, lInf)
	}
	return
}
