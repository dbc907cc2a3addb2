//go:build cgo
// +build cgo

package utils

/*
#cgo LDFLAGS: -lopenblas -lm -lpthread
#include <cblas.h>
*/
import "C"

import (
	"github.com/golang/glog"
	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// The LU solve mode goes through gonum's mat, which uses whatever BLAS is
// registered here
func init() {
	blas64.Use(netblas.Implementation{})
	glog.V(1).Info("using netlib BLAS for dense LU solves")
}
