// Command zinkprintd exposes a Facade over HTTP: /status, /print, /info.
// It mirrors the teacher's single-printer gin server in shape (CORS
// middleware, r.GET/r.POST, gin.H{} bodies) but dispatches through
// printer.Facade instead of a hard-coded device type.
package main

import (
	"flag"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"zinkdriver/printer"
	"zinkdriver/transport"
)

type statusResponse struct {
	Ready          bool   `json:"ready"`
	BatteryPercent int    `json:"battery_percent"`
	Error          string `json:"error,omitempty"`
}

type infoResponse struct {
	Family          string   `json:"family"`
	Model           string   `json:"model"`
	PrintWidthPx    int      `json:"print_width_px"`
	PrintHeightPx   int      `json:"print_height_px"`
	AcceptedFormats []string `json:"accepted_formats"`
}

func main() {
	configPath := flag.String("config", "zinkprintd.yaml", "path to the printer config YAML file")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Parse()

	log := logrus.StandardLogger()

	cfg, err := printer.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	dialer := transport.NewDialer(log)
	facade := printer.New(*cfg, dialer, log)

	if err := facade.Open(); err != nil {
		log.WithError(err).Fatal("failed to open printer")
	}
	defer facade.Close()

	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/status", func(c *gin.Context) { getStatus(c, facade) })
	r.GET("/info", func(c *gin.Context) { getInfo(c, facade) })
	r.POST("/print", func(c *gin.Context) { postPrint(c, facade) })

	log.Infof("zinkprintd starting on %s", *addr)
	log.Fatal(r.Run(*addr))
}

func getStatus(c *gin.Context, facade *printer.Facade) {
	st, err := facade.Status()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	resp := statusResponse{
		Ready:          st.IsReady,
		BatteryPercent: st.BatteryPercent,
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func getInfo(c *gin.Context, facade *printer.Facade) {
	info := facade.Info()
	c.JSON(http.StatusOK, infoResponse{
		Family:          string(info.Family),
		Model:           info.Model,
		PrintWidthPx:    info.PrintWidthPx,
		PrintHeightPx:   info.PrintHeightPx,
		AcceptedFormats: info.AcceptedFormats,
	})
}

func postPrint(c *gin.Context, facade *printer.Facade) {
	copies, _ := strconv.Atoi(c.DefaultQuery("copies", "1"))
	autoCrop := c.DefaultQuery("auto_crop", "false") == "true"

	jpeg, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image body"})
		return
	}

	if err := facade.Print(jpeg, copies, autoCrop); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
