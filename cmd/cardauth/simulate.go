package main

import (
	"github.com/ardnew/cardauth/auth"
	"github.com/ardnew/cardauth/auth/cardsim"
	"github.com/ardnew/cardauth/disk"
	"github.com/ardnew/cardauth/pkg"
	"github.com/ardnew/cardauth/pkg/config"
)

// simPlatform exposes one emulated card as the only available disk.
type simPlatform struct {
	card *cardsim.Card
}

func newSimPlatform(reg *auth.Registry, sc *config.SimulateConfig) (*simPlatform, error) {
	card, err := cardsim.NewFromRegistry(reg, auth.ControllerType(sc.Controller))
	if err != nil {
		return nil, err
	}
	card.SetCounterfeit(sc.Counterfeit)
	pkg.LogDebug(pkg.ComponentSim, "emulated card ready",
		"disk", card.Name(),
		"controller", sc.Controller,
		"counterfeit", sc.Counterfeit)
	return &simPlatform{card: card}, nil
}

func (p *simPlatform) Volumes() ([]disk.Volume, error) {
	return []disk.Volume{{ID: p.card.Name(), Name: p.card.Name()}}, nil
}

func (p *simPlatform) Open(id string) (disk.Disk, error) {
	if id != p.card.Name() {
		return nil, pkg.ErrDeviceNotFound
	}
	return p.card, nil
}
