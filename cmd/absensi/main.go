package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Mohzhal/absensi/internal/capture"
	"github.com/Mohzhal/absensi/internal/client"
	"github.com/Mohzhal/absensi/internal/geo"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "attendance server base URL")
	nik := flag.String("nik", "", "employee NIK")
	password := flag.String("password", "", "account password")
	photoPath := flag.String("photo", "", "path to the selfie to submit")
	lat := flag.Float64("lat", 0, "latitude of the current position")
	lon := flag.Float64("lon", 0, "longitude of the current position")
	jitterM := flag.Float64("jitter", 0, "random GPS noise radius in meters")
	flag.Parse()

	if *nik == "" || *password == "" || *photoPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	api := client.New(*serverURL)
	session, err := api.Login(ctx, *nik, *password)
	if err != nil {
		fatalUserError(err)
	}
	log.Printf("Login berhasil: %s (%s)", session.User.Name, session.User.Role)

	company, err := api.GetCompany(ctx, session.User.CompanyID)
	if err != nil {
		fatalUserError(err)
	}
	log.Printf("Perusahaan: %s, radius valid %d m", company.Name, company.ValidRadiusM)

	camera := &capture.FileCamera{Path: *photoPath}
	base := geo.Coordinate{Lat: *lat, Lon: *lon}
	var locator capture.Locator = &capture.FixedLocator{Fix: base}
	if *jitterM > 0 {
		locator = capture.NewJitterLocator(base, *jitterM)
	}

	flow := capture.NewSession(api, camera, locator)

	attType, err := flow.Begin(ctx)
	if err != nil {
		fatalUserError(err)
	}
	log.Printf("Aksi berikutnya: %s", attType)

	if err := flow.TakePhoto(ctx); err != nil {
		fatalUserError(err)
	}

	result, err := flow.Confirm(ctx)
	if err != nil {
		fatalUserError(err)
	}

	preview := capture.BuildPreview(result)
	fmt.Println(preview.Msg)
	fmt.Println(preview.StatusLine)
	fmt.Println(preview.DistanceLine)
	if preview.Region != nil {
		fmt.Printf("Peta: pusat (%.7f, %.7f), span (%.4f, %.4f)\n",
			preview.Region.Center.Lat, preview.Region.Center.Lon,
			preview.Region.LatDelta, preview.Region.LonDelta)
	} else {
		fmt.Println(preview.FallbackText)
	}

	if err := flow.Acknowledge(); err != nil {
		log.Printf("State cleanup failed: %v", err)
	}
	fmt.Println(capture.ActionLabel(flow.Today(), time.Now()))
}

// fatalUserError prints server and connectivity failures in user terms
// before exiting.
func fatalUserError(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		log.Fatalf("Ditolak server: %s", apiErr.Msg)
	}
	var connErr *client.ConnectivityError
	if errors.As(err, &connErr) {
		log.Fatalf("Tidak dapat terhubung ke server, periksa koneksi Anda")
	}
	log.Fatalf("Gagal: %v", err)
}
