package main

import (
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_shutdownHTTPServer_RunsAfterDrain(t *testing.T) {
	// given
	started := make(chan struct{})
	var finished atomic.Bool
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			close(started)
			time.Sleep(200 * time.Millisecond)
			finished.Store(true)
			w.WriteHeader(http.StatusNoContent)
		}),
		ReadHeaderTimeout: time.Second,
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()

	responded := make(chan int, 1)
	go func() {
		resp, err := http.Post("http://"+lis.Addr().String()+"/api/products", "application/json", nil)
		if err != nil {
			responded <- 0
			return
		}
		_ = resp.Body.Close()
		responded <- resp.StatusCode
	}()
	<-started

	// when
	var finishedBeforeAfter bool
	err = shutdownHTTPServer(srv, 5*time.Second, func() {
		finishedBeforeAfter = finished.Load()
	})

	// then
	require.NoError(t, err)
	assert.True(t, finishedBeforeAfter, "in-flight request completes before after runs")
	assert.Equal(t, http.StatusNoContent, <-responded)
}

func Test_shutdownHTTPServer_RunsAfterOnTimeout(t *testing.T) {
	// given
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			close(started)
			<-release
		}),
		ReadHeaderTimeout: time.Second,
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()
	go func() {
		resp, err := http.Get("http://" + lis.Addr().String() + "/")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()
	<-started

	// when
	var called bool
	err = shutdownHTTPServer(srv, 50*time.Millisecond, func() { called = true })

	// then
	assert.Error(t, err)
	assert.True(t, called)
}
