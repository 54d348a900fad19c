// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

//go:build integration

package integration

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unidavemeyer/web-adventure/internal/auth"
	"github.com/unidavemeyer/web-adventure/internal/layout"
	"github.com/unidavemeyer/web-adventure/internal/nav"
	"github.com/unidavemeyer/web-adventure/internal/observability"
	"github.com/unidavemeyer/web-adventure/internal/session"
	"github.com/unidavemeyer/web-adventure/internal/web"
)

const gameLayout = `
name: Start
desc: An antechamber. You carry {gold} gold.
exits:
  - name: Market
    verb: Walk to the market
  - name: Vault
    verb: Open the heavy door
    cond: [gt, gold, 10]
---
name: Market
desc: The market square.
exits:
  - name: Start
    verb: Go back
changes:
  - [add, gold, 5]
---
name: Vault
desc: Treasure everywhere.
exits:
  - name: Start
    verb: Slip back out
changes:
  - [add, gold, 100]
`

var _ = Describe("Gameplay", func() {
	var (
		sessionDir string
		layoutPath string
		server     *httptest.Server
		client     *http.Client
	)

	startServer := func() {
		data, err := os.ReadFile(layoutPath)
		Expect(err).NotTo(HaveOccurred())

		graph, errs := layout.Load(strings.NewReader(string(data)))
		Expect(errs).To(BeEmpty())

		store, errs := session.LoadAll(sessionDir)
		Expect(errs).To(BeEmpty())
		Expect(store.ResolveRooms(graph)).To(BeEmpty())

		metrics := observability.NewMetrics(prometheus.NewRegistry())
		webServer := web.NewServer(graph, store, nav.NewDispatcher(graph), auth.NewPBKDF2Hasher(), metrics)
		server = httptest.NewServer(webServer.Handler())

		jar, err := cookiejar.New(nil)
		Expect(err).NotTo(HaveOccurred())
		client = &http.Client{Jar: jar}
	}

	fetch := func(path string) string {
		resp, err := client.Get(server.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return string(body)
	}

	submit := func(path string, form url.Values) *http.Response {
		resp, err := client.PostForm(server.URL+path, form)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		return resp
	}

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		sessionDir = filepath.Join(dir, "sessions")
		Expect(os.MkdirAll(sessionDir, 0o700)).To(Succeed())

		layoutPath = filepath.Join(dir, "game.yml")
		Expect(os.WriteFile(layoutPath, []byte(gameLayout), 0o600)).To(Succeed())

		startServer()
	})

	AfterEach(func() {
		server.Close()
	})

	It("runs the full create, navigate, persist, reload cycle", func() {
		By("creating an account")
		resp := submit("/create", url.Values{
			"uid":      {"ada"},
			"password": {"open sesame"},
			"confirm":  {"open sesame"},
		})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		By("starting in the antechamber with no gold")
		body := fetch("/play")
		Expect(body).To(ContainSubstring("You carry 0 gold."))
		Expect(body).NotTo(ContainSubstring("Open the heavy door"))

		By("earning gold at the market until the vault opens")
		for range 3 {
			fetch("/play?go=Market")
			body = fetch("/play?go=Start")
		}
		Expect(body).To(ContainSubstring("You carry 15 gold."))
		Expect(body).To(ContainSubstring("Open the heavy door"))

		By("looting the vault")
		body = fetch("/play?go=Vault")
		Expect(body).To(ContainSubstring("Treasure everywhere."))

		By("restarting the server over the same session directory")
		server.Close()
		startServer()

		By("logging back in with the same credentials")
		resp = submit("/login", url.Values{
			"uid":      {"ada"},
			"password": {"open sesame"},
		})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		By("resuming in the vault with the looted gold")
		body = fetch("/play")
		Expect(body).To(ContainSubstring("Treasure everywhere."))
		body = fetch("/play?go=Start")
		Expect(body).To(ContainSubstring("You carry 115 gold."))
	})

	It("rejects a wrong password after restart", func() {
		submit("/create", url.Values{
			"uid":      {"ada"},
			"password": {"right"},
			"confirm":  {"right"},
		})

		server.Close()
		startServer()

		resp := submit("/login", url.Values{"uid": {"ada"}, "password": {"wrong"}})
		Expect(resp.Request.URL.Query().Get("err")).NotTo(BeEmpty())
	})

	It("keeps one durable record per identity", func() {
		submit("/create", url.Values{
			"uid":      {"ada"},
			"password": {"pw"},
			"confirm":  {"pw"},
		})
		for range 5 {
			fetch("/play?go=Market")
			fetch("/play?go=Start")
		}

		entries, err := os.ReadDir(sessionDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Name()).To(HaveSuffix(".yml"))
	})
})
