package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/pipeline"
)

var (
	assessLocation  string
	assessSessionID string
	assessContacts  []string
)

var assessCmd = &cobra.Command{
	Use:   "assess [description]",
	Short: "Run one incident through the pipeline and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = rt.closer() }()

		contacts, err := parseContacts(assessContacts)
		if err != nil {
			return err
		}

		p := pipeline.New(rt.client, func(o *pipeline.Options) {
			o.SessionStore = rt.store
			o.Logger = rt.logger
		})

		res, err := p.Run(cmd.Context(), pipeline.Request{
			Description: args[0],
			Location:    assessLocation,
			Contacts:    contacts,
			SessionID:   assessSessionID,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	assessCmd.Flags().StringVar(&assessLocation, "location", "", "Incident location")
	assessCmd.Flags().StringVar(&assessSessionID, "session", "", "Session id to resume")
	assessCmd.Flags().StringArrayVar(&assessContacts, "contact", nil,
		"Emergency contact as name:relation:phone (repeatable)")
}

// parseContacts turns name:relation:phone triples into contacts.
func parseContacts(raw []string) ([]core.Contact, error) {
	contacts := make([]core.Contact, 0, len(raw))
	for _, entry := range raw {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid contact %q: want name:relation:phone", entry)
		}
		contacts = append(contacts, core.Contact{
			Name:     parts[0],
			Relation: parts[1],
			Phone:    parts[2],
		})
	}
	return contacts, nil
}
