// Package cardsim emulates a genuine card for exercising the authenticator
// without hardware.
//
// A [Card] implements [auth.Disk]. Ordinary reads return stored data; reads
// at command addresses drive an emulated firmware that accepts the knock
// sequence, reports its controller type and answers the challenge rounds
// with the digest a real card would produce.
//
//	card, _ := cardsim.NewFromRegistry(auth.DefaultRegistry(), auth.Controller80)
//	result, _ := auth.New(card).Authenticate(true) // Successful
//
// [Card.SetCounterfeit] makes the card answer with a wrong digest.
package cardsim
